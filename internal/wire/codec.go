package wire

import "encoding/json"

// onWire is the exact JSON shape exchanged with the module: "c" (cmd),
// "s" (sid), "d" (did), "b" (payload). encoding/json marshals a []byte
// field as standard base64, which is the payload encoding this module
// family's firmware expects.
type onWire struct {
	C uint8  `json:"c"`
	S uint16 `json:"s"`
	D uint16 `json:"d"`
	B []byte `json:"b"`
}

// Encode renders p as the single-line wire JSON object ready to write to
// the transport.
func Encode(p Packet) ([]byte, error) {
	return json.Marshal(onWire{C: p.Cmd, S: p.SID, D: p.DID, B: p.Payload})
}

// Decode parses exactly one complete JSON object, as handed to it by the
// transport's framing reader (see internal/transport), into a Packet.
// An unrecognized cmd is not an error here: §4.A says unknown opcodes are
// ignored by the protocol layer above the codec, not rejected by the codec.
func Decode(raw []byte) (Packet, error) {
	var w onWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Packet{}, err
	}
	return Packet{Cmd: w.C, SID: w.S, DID: w.D, Payload: w.B}, nil
}
