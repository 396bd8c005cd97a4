package packet

import (
	"bytes"
	"fmt"

	"github.com/golang-io/requests"
)

// NAME is the fixed MQTT protocol name field: 0x00 0x04 'M' 'Q' 'T' 'T'.
var NAME = []byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}

// ConnectFlags is the single flag byte in the CONNECT variable header
// (OASIS MQTT v5.0 §3.1.2.3).
//
//	bit7 UserNameFlag | bit6 PasswordFlag | bit5 WillRetain | bit4-3 WillQoS
//	bit2 WillFlag | bit1 CleanStart | bit0 Reserved
type ConnectFlags uint8

func (f ConnectFlags) Reserved() uint8     { return uint8(f) & 0x01 }
func (f ConnectFlags) CleanStart() bool    { return uint8(f)&0x02 == 0x02 }
func (f ConnectFlags) WillFlag() bool      { return uint8(f)&0x04 == 0x04 }
func (f ConnectFlags) WillQoS() uint8      { return (uint8(f) & 0x18) >> 3 }
func (f ConnectFlags) WillRetain() bool    { return uint8(f)&0x20 == 0x20 }
func (f ConnectFlags) PasswordFlag() bool  { return uint8(f)&0x40 == 0x40 }
func (f ConnectFlags) UserNameFlag() bool  { return uint8(f)&0x80 == 0x80 }

// CONNECT is the first packet a client sends after opening the network
// connection (OASIS MQTT v5.0 §3.1). A second CONNECT on the same
// connection is a protocol violation.
type CONNECT struct {
	*FixedHeader

	ConnectFlags ConnectFlags
	KeepAlive    uint16
	Props        *Properties

	ClientID string

	WillProps   *Properties
	WillTopic   string
	WillPayload []byte

	Username string
	Password string
}

func (pkt *CONNECT) Kind() byte      { return 0x1 }
func (pkt *CONNECT) String() string  { return "CONNECT" }

func (pkt *CONNECT) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(NAME)
	buf.WriteByte(pkt.FixedHeader.Version)

	var flags ConnectFlags
	if pkt.Username != "" {
		flags |= 0x80
	}
	if pkt.Password != "" {
		flags |= 0x40
	}
	if pkt.WillTopic != "" {
		flags |= 0x04 // WillFlag
		flags |= ConnectFlags(pkt.ConnectFlags.WillQoS()) << 3
		if pkt.ConnectFlags.WillRetain() {
			flags |= 0x20
		}
	}
	if pkt.ConnectFlags.CleanStart() {
		flags |= 0x02
	}
	buf.WriteByte(byte(flags))

	buf.Write(i2b(pkt.KeepAlive))

	if pkt.Version == VERSION500 {
		if pkt.Props == nil {
			pkt.Props = &Properties{}
		}
		if err := pkt.Props.Pack(buf); err != nil {
			return err
		}
	}

	if len(pkt.ClientID) > 23 {
		return fmt.Errorf("packet: client id %d bytes exceeds 23", len(pkt.ClientID))
	}
	buf.Write(encodeUTF8(pkt.ClientID))

	if flags.WillFlag() {
		if pkt.Version == VERSION500 {
			if pkt.WillProps == nil {
				pkt.WillProps = &Properties{}
			}
			if err := pkt.WillProps.Pack(buf); err != nil {
				return err
			}
		}
		buf.Write(encodeUTF8(pkt.WillTopic))
		buf.Write(encodeUTF8(pkt.WillPayload))
	}
	if pkt.Username != "" {
		buf.Write(encodeUTF8(pkt.Username))
	}
	if pkt.Password != "" {
		buf.Write(encodeUTF8(pkt.Password))
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *CONNECT) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 6 {
		return ErrShortBuffer
	}
	name := buf.Next(6)
	if !bytes.Equal(name, NAME) {
		return fmt.Errorf("%w: protocol name %q", ErrMalformedProtocolName, name)
	}

	if buf.Len() < 4 {
		return ErrShortBuffer
	}
	pkt.Version = buf.Next(1)[0]
	pkt.ConnectFlags = ConnectFlags(buf.Next(1)[0])

	// The reserved flag bit must be zero [MQTT-3.1.2-3].
	if pkt.ConnectFlags.Reserved() != 0 {
		return ErrMalformedConnectFlagsReserved
	}
	// Will QoS is a 2-bit field; 3 is reserved [MQTT-3.1.2-14].
	if pkt.ConnectFlags.WillQoS() > 2 {
		return ErrProtocolViolationQoSOutOfRange
	}
	// If the Will Flag is 0, Will QoS and Will Retain must also be 0
	// [MQTT-3.1.2-11], [MQTT-3.1.2-15].
	if !pkt.ConnectFlags.WillFlag() && (pkt.ConnectFlags.WillRetain() || pkt.ConnectFlags.WillQoS() != 0) {
		return ErrProtocolViolationWillFlagNoWill
	}
	// If UserNameFlag is 0, PasswordFlag must be 0 [MQTT-3.1.2-22].
	if !pkt.ConnectFlags.UserNameFlag() && pkt.ConnectFlags.PasswordFlag() {
		return ErrProtocolError
	}

	kv, err := readU16(buf)
	if err != nil {
		return err
	}
	pkt.KeepAlive = kv

	switch pkt.Version {
	case VERSION500:
		pkt.Props = &Properties{}
		if err := pkt.Props.Unpack(buf); err != nil {
			return err
		}
	case VERSION311:
	case VERSION310:
		return ErrUnsupportedProtocolVersion
	default:
		return ErrMalformedProtocolVersion
	}

	clientID, _, err := decodeUTF8[string](buf)
	if err != nil {
		return err
	}
	pkt.ClientID = clientID
	if pkt.ClientID == "" {
		// Server assigns one when the client sends an empty Client
		// Identifier [MQTT-3.1.3-6].
		pkt.ClientID = requests.GenId()
	}

	if pkt.ConnectFlags.WillFlag() {
		// Will Topic and Will Payload must both be present
		// [MQTT-3.1.2-9].
		if pkt.Version == VERSION500 {
			pkt.WillProps = &Properties{}
			if err := pkt.WillProps.Unpack(buf); err != nil {
				return err
			}
		}
		willTopic, _, err := decodeUTF8[string](buf)
		if err != nil {
			return err
		}
		if willTopic == "" {
			return ErrProtocolViolationWillFlagNoWill
		}
		pkt.WillTopic = willTopic

		willPayload, _, err := decodeUTF8[[]byte](buf)
		if err != nil {
			return err
		}
		pkt.WillPayload = willPayload
	}

	if pkt.ConnectFlags.UserNameFlag() {
		// Payload must contain a User Name field [MQTT-3.1.2-19].
		username, _, err := decodeUTF8[string](buf)
		if err != nil {
			return err
		}
		pkt.Username = username
	}
	if pkt.ConnectFlags.PasswordFlag() {
		// Payload must contain a Password field [MQTT-3.1.2-21].
		password, _, err := decodeUTF8[string](buf)
		if err != nil {
			return err
		}
		pkt.Password = password
	}
	return nil
}
