// Package wire implements the outbound wire formats named in SPEC_FULL.md
// §7: navigation/odometry structs serialized with encoding/binary (no ROS2
// Go client ships in this corpus to build on — see DESIGN.md), plus the
// *Request/*Response RPC envelopes exchanged with onboard status services.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PoseStamped is a timestamped 2D pose (position + heading).
type PoseStamped struct {
	StampUnixNano  int64
	FrameID        string
	X, Y, Z        float64
	Qx, Qy, Qz, Qw float64
}

// Twist is a linear + angular velocity command.
type Twist struct {
	LinearX, LinearY, LinearZ    float64
	AngularX, AngularY, AngularZ float64
}

// Odometry is a pose + velocity estimate, as published by a mobile base.
type Odometry struct {
	StampUnixNano int64
	Pose          PoseStamped
	Twist         Twist
}

// AMCLPose is a localization estimate with covariance diagonal.
type AMCLPose struct {
	Pose               PoseStamped
	CovarianceDiagonal [6]float64
}

// Nav2Status is a navigation action-server status update.
type Nav2Status struct {
	GoalID     string
	StatusCode int32
	Message    string
}

// Serialize encodes p as a fixed-layout binary record: int64 stamp, a
// length-prefixed frame id, then 7 float64 fields.
func (p PoseStamped) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, p.StampUnixNano); err != nil {
		return nil, err
	}
	if err := writeString(&buf, p.FrameID); err != nil {
		return nil, err
	}
	fields := []float64{p.X, p.Y, p.Z, p.Qx, p.Qy, p.Qz, p.Qw}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.BigEndian, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DeserializePoseStamped decodes a PoseStamped produced by Serialize.
func DeserializePoseStamped(data []byte) (PoseStamped, error) {
	r := bytes.NewReader(data)
	var p PoseStamped
	if err := binary.Read(r, binary.BigEndian, &p.StampUnixNano); err != nil {
		return PoseStamped{}, fmt.Errorf("wire: read stamp: %w", err)
	}
	frameID, err := readString(r)
	if err != nil {
		return PoseStamped{}, fmt.Errorf("wire: read frame id: %w", err)
	}
	p.FrameID = frameID
	fields := []*float64{&p.X, &p.Y, &p.Z, &p.Qx, &p.Qy, &p.Qz, &p.Qw}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return PoseStamped{}, fmt.Errorf("wire: read field: %w", err)
		}
	}
	return p, nil
}

// Serialize encodes t as 6 consecutive big-endian float64 fields.
func (t Twist) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	fields := []float64{t.LinearX, t.LinearY, t.LinearZ, t.AngularX, t.AngularY, t.AngularZ}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.BigEndian, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DeserializeTwist decodes a Twist produced by Serialize.
func DeserializeTwist(data []byte) (Twist, error) {
	r := bytes.NewReader(data)
	var t Twist
	fields := []*float64{&t.LinearX, &t.LinearY, &t.LinearZ, &t.AngularX, &t.AngularY, &t.AngularZ}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return Twist{}, fmt.Errorf("wire: read field: %w", err)
		}
	}
	return t, nil
}

// Serialize encodes o as its stamp, its Pose, then its Twist.
func (o Odometry) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, o.StampUnixNano); err != nil {
		return nil, err
	}
	poseBytes, err := o.Pose.Serialize()
	if err != nil {
		return nil, err
	}
	buf.Write(poseBytes)
	twistBytes, err := o.Twist.Serialize()
	if err != nil {
		return nil, err
	}
	buf.Write(twistBytes)
	return buf.Bytes(), nil
}

// DeserializeOdometry decodes an Odometry produced by Serialize.
func DeserializeOdometry(data []byte) (Odometry, error) {
	r := bytes.NewReader(data)
	var o Odometry
	if err := binary.Read(r, binary.BigEndian, &o.StampUnixNano); err != nil {
		return Odometry{}, fmt.Errorf("wire: read stamp: %w", err)
	}
	remaining := make([]byte, r.Len())
	if _, err := r.Read(remaining); err != nil {
		return Odometry{}, fmt.Errorf("wire: read body: %w", err)
	}
	poseBytes, poseLen, err := poseByteLen(remaining)
	if err != nil {
		return Odometry{}, err
	}
	pose, err := DeserializePoseStamped(poseBytes)
	if err != nil {
		return Odometry{}, err
	}
	twist, err := DeserializeTwist(remaining[poseLen:])
	if err != nil {
		return Odometry{}, err
	}
	o.Pose = pose
	o.Twist = twist
	return o, nil
}

// poseByteLen returns the byte slice for one serialized PoseStamped
// prefix of data along with its length, so callers can locate the bytes
// that follow it without a length-prefixed outer envelope.
func poseByteLen(data []byte) ([]byte, int, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("wire: truncated pose stamp")
	}
	frameIDLen := binary.BigEndian.Uint32(data[8:12])
	fixed := 8 + 4 + int(frameIDLen) + 8*7
	if len(data) < fixed {
		return nil, 0, fmt.Errorf("wire: truncated pose body")
	}
	return data[:fixed], fixed, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	data := make([]byte, n)
	if _, err := r.Read(data); err != nil {
		return "", err
	}
	return string(data), nil
}
