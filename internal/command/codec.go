package command

import (
	"encoding/binary"
	"fmt"
)

// RequestSize and ReplySize are the packed little-endian wire sizes:
// request {type: i32, value: i32}, reply {ok: i32, mission_go: i32,
// throttle: i32}.
const (
	RequestSize = 8
	ReplySize   = 12
)

// EncodeRequest packs a Command into the exact wire layout.
func EncodeRequest(cmd Command) []byte {
	buf := make([]byte, RequestSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(cmd.Type))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(cmd.Value))
	return buf
}

// DecodeRequest unpacks a wire request. It returns an error only for a
// malformed (wrong-length) buffer; an unrecognized type code is preserved
// as-is so callers can reply ok=0.
func DecodeRequest(buf []byte) (Command, error) {
	if len(buf) != RequestSize {
		return Command{}, fmt.Errorf("command: malformed request: want %d bytes, got %d", RequestSize, len(buf))
	}
	return Command{
		Type:  Type(binary.LittleEndian.Uint32(buf[0:4])),
		Value: int32(binary.LittleEndian.Uint32(buf[4:8])),
	}, nil
}

// EncodeReply packs a Reply into the exact wire layout.
func EncodeReply(r Reply) []byte {
	buf := make([]byte, ReplySize)
	ok := int32(0)
	if r.OK {
		ok = 1
	}
	goFlag := int32(0)
	if r.MissionGo {
		goFlag = 1
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(ok))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(goFlag))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(r.ThrottlePct))
	return buf
}

// DecodeReply unpacks a wire reply.
func DecodeReply(buf []byte) (Reply, error) {
	if len(buf) != ReplySize {
		return Reply{}, fmt.Errorf("command: malformed reply: want %d bytes, got %d", ReplySize, len(buf))
	}
	return Reply{
		OK:          binary.LittleEndian.Uint32(buf[0:4]) != 0,
		MissionGo:   binary.LittleEndian.Uint32(buf[4:8]) != 0,
		ThrottlePct: int(int32(binary.LittleEndian.Uint32(buf[8:12]))),
	}, nil
}
