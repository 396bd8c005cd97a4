package packet

import (
	"bytes"
	"encoding/binary"
)

// Property identifiers, OASIS MQTT v5.0 §2.2.2.2 / Table 2-4.
const (
	propPayloadFormatIndicator    = 0x01
	propMessageExpiryInterval     = 0x02
	propContentType               = 0x03
	propResponseTopic             = 0x08
	propCorrelationData           = 0x09
	propSubscriptionIdentifier    = 0x0B
	propSessionExpiryInterval     = 0x11
	propAssignedClientIdentifier  = 0x12
	propServerKeepAlive           = 0x13
	propAuthenticationMethod      = 0x15
	propAuthenticationData        = 0x16
	propRequestProblemInfo        = 0x17
	propWillDelayInterval         = 0x18
	propRequestResponseInfo       = 0x19
	propResponseInformation       = 0x1A
	propServerReference           = 0x1C
	propReasonString              = 0x1F
	propReceiveMaximum            = 0x21
	propTopicAliasMaximum         = 0x22
	propTopicAlias                = 0x23
	propMaximumQoS                = 0x24
	propRetainAvailable           = 0x25
	propUserProperty              = 0x26
	propMaximumPacketSize         = 0x27
	propWildcardSubAvailable      = 0x28
	propSubIdentifiersAvailable   = 0x29
	propSharedSubAvailable        = 0x2A
)

// UserProperty is a single user-defined name/value pair (MQTT v5.0
// §3.1.2.11.8 and friends). The same identifier may appear more than once
// in a property section; every occurrence is preserved, in order.
type UserProperty struct {
	Name  string
	Value string
}

// Properties is the open, typed property set every MQTT 5 control packet
// variable header may carry (spec.md §3 "Properties"). A single struct
// backs all fifteen packet types; each Pack/Unpack site writes or reads
// only the subset legal for that packet, per OASIS MQTT v5.0 §3.1.2.11
// through §3.15.2.2.
//
// Zero-value fields are omitted on the wire (property presence is
// significant in MQTT 5, e.g. absent Receive Maximum means "use the
// default of 65535", not "zero"), except where a property's zero value is
// itself meaningful (handled at the call site, e.g. PayloadFormatIndicator
// 0 is UNSPECIFIED and is still a legal explicit value — but since it is
// also the Go zero value, the packet always omits it, which is the
// correct behavior since broker default is also UNSPECIFIED).
type Properties struct {
	PayloadFormatIndicator    *uint8
	MessageExpiryInterval     *uint32
	ContentType               string
	ResponseTopic             string
	CorrelationData           []byte
	SubscriptionIdentifier    []uint32 // repeatable; every occurrence is kept, in order
	SessionExpiryInterval     *uint32
	AssignedClientIdentifier  string
	ServerKeepAlive           *uint16
	AuthenticationMethod      string
	AuthenticationData        []byte
	RequestProblemInfo        *uint8
	WillDelayInterval         *uint32
	RequestResponseInfo       *uint8
	ResponseInformation       string
	ServerReference           string
	ReasonString              string
	ReceiveMaximum            *uint16
	TopicAliasMaximum         *uint16
	TopicAlias                *uint16
	MaximumQoS                *uint8
	RetainAvailable           *uint8
	UserProperties            []UserProperty
	MaximumPacketSize         *uint32
	WildcardSubAvailable      *uint8
	SubIdentifiersAvailable   *uint8
	SharedSubAvailable        *uint8
}

func u8p(v uint8) *uint8   { return &v }
func u16p(v uint16) *uint16 { return &v }
func u32p(v uint32) *uint32 { return &v }

// Pack appends the encoded property section (length-prefixed) to buf, in
// the teacher's buffer-pool idiom: callers own buf and must not retain
// slices of it past the packet's Pack call.
func (p *Properties) Pack(buf *bytes.Buffer) error {
	if p == nil {
		buf.Write(mustEncodeLength(0))
		return nil
	}
	var body bytes.Buffer
	if p.PayloadFormatIndicator != nil {
		body.WriteByte(propPayloadFormatIndicator)
		body.WriteByte(*p.PayloadFormatIndicator)
	}
	if p.MessageExpiryInterval != nil {
		body.WriteByte(propMessageExpiryInterval)
		body.Write(i4b(*p.MessageExpiryInterval))
	}
	if p.ContentType != "" {
		body.WriteByte(propContentType)
		body.Write(encodeUTF8(p.ContentType))
	}
	if p.ResponseTopic != "" {
		body.WriteByte(propResponseTopic)
		body.Write(encodeUTF8(p.ResponseTopic))
	}
	if len(p.CorrelationData) > 0 {
		body.WriteByte(propCorrelationData)
		body.Write(encodeUTF8(p.CorrelationData))
	}
	for _, id := range p.SubscriptionIdentifier {
		body.WriteByte(propSubscriptionIdentifier)
		enc, err := encodeLength(id)
		if err != nil {
			return err
		}
		body.Write(enc)
	}
	if p.SessionExpiryInterval != nil {
		body.WriteByte(propSessionExpiryInterval)
		body.Write(i4b(*p.SessionExpiryInterval))
	}
	if p.AssignedClientIdentifier != "" {
		body.WriteByte(propAssignedClientIdentifier)
		body.Write(encodeUTF8(p.AssignedClientIdentifier))
	}
	if p.ServerKeepAlive != nil {
		body.WriteByte(propServerKeepAlive)
		body.Write(i2b(*p.ServerKeepAlive))
	}
	if p.AuthenticationMethod != "" {
		body.WriteByte(propAuthenticationMethod)
		body.Write(encodeUTF8(p.AuthenticationMethod))
	}
	if len(p.AuthenticationData) > 0 {
		body.WriteByte(propAuthenticationData)
		body.Write(encodeUTF8(p.AuthenticationData))
	}
	if p.RequestProblemInfo != nil {
		body.WriteByte(propRequestProblemInfo)
		body.WriteByte(*p.RequestProblemInfo)
	}
	if p.WillDelayInterval != nil {
		body.WriteByte(propWillDelayInterval)
		body.Write(i4b(*p.WillDelayInterval))
	}
	if p.RequestResponseInfo != nil {
		body.WriteByte(propRequestResponseInfo)
		body.WriteByte(*p.RequestResponseInfo)
	}
	if p.ResponseInformation != "" {
		body.WriteByte(propResponseInformation)
		body.Write(encodeUTF8(p.ResponseInformation))
	}
	if p.ServerReference != "" {
		body.WriteByte(propServerReference)
		body.Write(encodeUTF8(p.ServerReference))
	}
	if p.ReasonString != "" {
		body.WriteByte(propReasonString)
		body.Write(encodeUTF8(p.ReasonString))
	}
	if p.ReceiveMaximum != nil {
		body.WriteByte(propReceiveMaximum)
		body.Write(i2b(*p.ReceiveMaximum))
	}
	if p.TopicAliasMaximum != nil {
		body.WriteByte(propTopicAliasMaximum)
		body.Write(i2b(*p.TopicAliasMaximum))
	}
	if p.TopicAlias != nil {
		body.WriteByte(propTopicAlias)
		body.Write(i2b(*p.TopicAlias))
	}
	if p.MaximumQoS != nil {
		body.WriteByte(propMaximumQoS)
		body.WriteByte(*p.MaximumQoS)
	}
	if p.RetainAvailable != nil {
		body.WriteByte(propRetainAvailable)
		body.WriteByte(*p.RetainAvailable)
	}
	for _, up := range p.UserProperties {
		body.WriteByte(propUserProperty)
		body.Write(encodeUTF8(up.Name))
		body.Write(encodeUTF8(up.Value))
	}
	if p.MaximumPacketSize != nil {
		body.WriteByte(propMaximumPacketSize)
		body.Write(i4b(*p.MaximumPacketSize))
	}
	if p.WildcardSubAvailable != nil {
		body.WriteByte(propWildcardSubAvailable)
		body.WriteByte(*p.WildcardSubAvailable)
	}
	if p.SubIdentifiersAvailable != nil {
		body.WriteByte(propSubIdentifiersAvailable)
		body.WriteByte(*p.SubIdentifiersAvailable)
	}
	if p.SharedSubAvailable != nil {
		body.WriteByte(propSharedSubAvailable)
		body.WriteByte(*p.SharedSubAvailable)
	}

	enc, err := encodeLength(body.Len())
	if err != nil {
		return err
	}
	buf.Write(enc)
	buf.Write(body.Bytes())
	return nil
}

// Unpack reads a length-prefixed property section from buf. Per spec
// §4.1, a second occurrence of any non-repeatable property is malformed,
// and an unrecognized property identifier is malformed.
func (p *Properties) Unpack(buf *bytes.Buffer) error {
	sectionLen, err := decodeLength(buf)
	if err != nil {
		return err
	}
	if buf.Len() < int(sectionLen) {
		return ErrShortBuffer
	}
	section := bytes.NewBuffer(buf.Next(int(sectionLen)))

	seen := make(map[byte]bool)
	once := func(id byte) error {
		if seen[id] {
			return ErrMalformedDuplicateProperty
		}
		seen[id] = true
		return nil
	}

	for section.Len() > 0 {
		id, err := section.ReadByte()
		if err != nil {
			return ErrShortBuffer
		}
		switch id {
		case propPayloadFormatIndicator:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.PayloadFormatIndicator = u8p(b)
		case propMessageExpiryInterval:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU32(section)
			if err != nil {
				return err
			}
			p.MessageExpiryInterval = u32p(v)
		case propContentType:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.ContentType = v
		case propResponseTopic:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.ResponseTopic = v
		case propCorrelationData:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[[]byte](section)
			if err != nil {
				return err
			}
			p.CorrelationData = v
		case propSubscriptionIdentifier:
			v, err := decodeLength(section)
			if err != nil {
				return err
			}
			if v == 0 {
				return ErrProtocolViolationSurplusPacketID
			}
			p.SubscriptionIdentifier = append(p.SubscriptionIdentifier, v)
		case propSessionExpiryInterval:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU32(section)
			if err != nil {
				return err
			}
			p.SessionExpiryInterval = u32p(v)
		case propAssignedClientIdentifier:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.AssignedClientIdentifier = v
		case propServerKeepAlive:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU16(section)
			if err != nil {
				return err
			}
			p.ServerKeepAlive = u16p(v)
		case propAuthenticationMethod:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.AuthenticationMethod = v
		case propAuthenticationData:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[[]byte](section)
			if err != nil {
				return err
			}
			p.AuthenticationData = v
		case propRequestProblemInfo:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.RequestProblemInfo = u8p(b)
		case propWillDelayInterval:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU32(section)
			if err != nil {
				return err
			}
			p.WillDelayInterval = u32p(v)
		case propRequestResponseInfo:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.RequestResponseInfo = u8p(b)
		case propResponseInformation:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.ResponseInformation = v
		case propServerReference:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.ServerReference = v
		case propReasonString:
			if err := once(id); err != nil {
				return err
			}
			v, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.ReasonString = v
		case propReceiveMaximum:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU16(section)
			if err != nil {
				return err
			}
			p.ReceiveMaximum = u16p(v)
		case propTopicAliasMaximum:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU16(section)
			if err != nil {
				return err
			}
			p.TopicAliasMaximum = u16p(v)
		case propTopicAlias:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU16(section)
			if err != nil {
				return err
			}
			p.TopicAlias = u16p(v)
		case propMaximumQoS:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.MaximumQoS = u8p(b)
		case propRetainAvailable:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.RetainAvailable = u8p(b)
		case propUserProperty:
			name, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			value, _, err := decodeUTF8[string](section)
			if err != nil {
				return err
			}
			p.UserProperties = append(p.UserProperties, UserProperty{Name: name, Value: value})
		case propMaximumPacketSize:
			if err := once(id); err != nil {
				return err
			}
			v, err := readU32(section)
			if err != nil {
				return err
			}
			p.MaximumPacketSize = u32p(v)
		case propWildcardSubAvailable:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.WildcardSubAvailable = u8p(b)
		case propSubIdentifiersAvailable:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.SubIdentifiersAvailable = u8p(b)
		case propSharedSubAvailable:
			if err := once(id); err != nil {
				return err
			}
			b, err := section.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			p.SharedSubAvailable = u8p(b)
		default:
			return ErrMalformedUnknownProperty
		}
	}
	return nil
}

func readU16(buf *bytes.Buffer) (uint16, error) {
	if buf.Len() < 2 {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint16(buf.Next(2)), nil
}

func readU32(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 4 {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint32(buf.Next(4)), nil
}

func mustEncodeLength(v int) []byte {
	b, _ := encodeLength(v)
	return b
}
