package packet

import (
	"errors"
	"fmt"
)

// ReasonCode is the single-byte outcome carried in MQTT 5 acknowledgement
// and DISCONNECT packets (OASIS MQTT v5.0 §2.4, §3.2.2.3, §4.13). Values
// 0x00-0x7F are success/informational; 0x80-0xFF are failures.
type ReasonCode struct {
	Code   uint8
	Reason string
}

func (rc ReasonCode) Error() string {
	return fmt.Sprintf("mqtt: reason 0x%02X: %s", rc.Code, rc.Reason)
}

// IsSuccess reports whether Code is in the success/informational range.
func (rc ReasonCode) IsSuccess() bool { return rc.Code < 0x80 }

// ErrShortBuffer is returned by decode routines when buf holds fewer bytes
// than the structure being decoded requires. It is never sent on the wire;
// the Reader (see the root package) treats it as "need more bytes" and
// keeps accumulating, per spec §4.1's decoder contract.
var ErrShortBuffer = errors.New("packet: short buffer, need more bytes")

// Success / informational reason codes (0x00-0x02), meaning depends on
// which packet type carries them.
var (
	CodeSuccess               = ReasonCode{Code: 0x00, Reason: "success"}
	CodeNormalDisconnection   = ReasonCode{Code: 0x00, Reason: "normal disconnection"}
	CodeGrantedQoS0           = ReasonCode{Code: 0x00, Reason: "granted qos 0"}
	CodeGrantedQoS1           = ReasonCode{Code: 0x01, Reason: "granted qos 1"}
	CodeGrantedQoS2           = ReasonCode{Code: 0x02, Reason: "granted qos 2"}
	CodeDisconnectWillMessage = ReasonCode{Code: 0x04, Reason: "disconnect with will message"}
	CodeNoMatchingSubscribers = ReasonCode{Code: 0x10, Reason: "no matching subscribers"}
	CodeNoSubscriptionExisted = ReasonCode{Code: 0x11, Reason: "no subscription existed"}
	CodeContinueAuthenticate  = ReasonCode{Code: 0x18, Reason: "continue authentication"}
	CodeReAuthenticate        = ReasonCode{Code: 0x19, Reason: "re-authenticate"}
)

// Failure reason codes, 0x80 and above. 0x81/0x82 are the two decoder
// error categories spec §4.1 requires (MalformedPacket, ProtocolError);
// the rest are broker-reported outcomes surfaced verbatim to callers.
var (
	ErrUnspecifiedError                    = ReasonCode{Code: 0x80, Reason: "unspecified error"}
	ErrMalformedPacket                     = ReasonCode{Code: 0x81, Reason: "malformed packet"}
	ErrProtocolError                       = ReasonCode{Code: 0x82, Reason: "protocol error"}
	ErrImplementationSpecificError         = ReasonCode{Code: 0x83, Reason: "implementation specific error"}
	ErrUnsupportedProtocolVersion          = ReasonCode{Code: 0x84, Reason: "unsupported protocol version"}
	ErrClientIdentifierNotValid            = ReasonCode{Code: 0x85, Reason: "client identifier not valid"}
	ErrBadUsernameOrPassword               = ReasonCode{Code: 0x86, Reason: "bad username or password"}
	ErrNotAuthorized                       = ReasonCode{Code: 0x87, Reason: "not authorized"}
	ErrServerUnavailable                   = ReasonCode{Code: 0x88, Reason: "server unavailable"}
	ErrServerBusy                          = ReasonCode{Code: 0x89, Reason: "server busy"}
	ErrBanned                              = ReasonCode{Code: 0x8A, Reason: "banned"}
	ErrServerShuttingDown                  = ReasonCode{Code: 0x8B, Reason: "server shutting down"}
	ErrBadAuthenticationMethod             = ReasonCode{Code: 0x8C, Reason: "bad authentication method"}
	ErrKeepAliveTimeout                    = ReasonCode{Code: 0x8D, Reason: "keep alive timeout"}
	ErrSessionTakenOver                    = ReasonCode{Code: 0x8E, Reason: "session taken over"}
	ErrTopicFilterInvalid                  = ReasonCode{Code: 0x8F, Reason: "topic filter invalid"}
	ErrTopicNameInvalid                    = ReasonCode{Code: 0x90, Reason: "topic name invalid"}
	ErrPacketIdentifierInUse               = ReasonCode{Code: 0x91, Reason: "packet identifier in use"}
	ErrPacketIdentifierNotFound            = ReasonCode{Code: 0x92, Reason: "packet identifier not found"}
	ErrReceiveMaximumExceeded              = ReasonCode{Code: 0x93, Reason: "receive maximum exceeded"}
	ErrTopicAliasInvalid                   = ReasonCode{Code: 0x94, Reason: "topic alias invalid"}
	ErrPacketTooLarge                      = ReasonCode{Code: 0x95, Reason: "packet too large"}
	ErrMessageRateTooHigh                  = ReasonCode{Code: 0x96, Reason: "message rate too high"}
	ErrQuotaExceeded                       = ReasonCode{Code: 0x97, Reason: "quota exceeded"}
	ErrAdministrativeAction                = ReasonCode{Code: 0x98, Reason: "administrative action"}
	ErrPayloadFormatInvalid                = ReasonCode{Code: 0x99, Reason: "payload format invalid"}
	ErrRetainNotSupported                  = ReasonCode{Code: 0x9A, Reason: "retain not supported"}
	ErrQoSNotSupported                     = ReasonCode{Code: 0x9B, Reason: "qos not supported"}
	ErrUseAnotherServer                    = ReasonCode{Code: 0x9C, Reason: "use another server"}
	ErrServerMoved                         = ReasonCode{Code: 0x9D, Reason: "server moved"}
	ErrSharedSubscriptionsNotSupported     = ReasonCode{Code: 0x9E, Reason: "shared subscriptions not supported"}
	ErrConnectionRateExceeded              = ReasonCode{Code: 0x9F, Reason: "connection rate exceeded"}
	ErrMaximumConnectTime                  = ReasonCode{Code: 0xA0, Reason: "maximum connect time"}
	ErrSubscriptionIdentifiersNotSupported = ReasonCode{Code: 0xA1, Reason: "subscription identifiers not supported"}
	ErrWildcardSubscriptionsNotSupported   = ReasonCode{Code: 0xA2, Reason: "wildcard subscriptions not supported"}
)

// Malformed-packet sub-reasons. All carry Code 0x81; the distinct Reason
// strings let the Dispatcher's event sink (root package) log specifically
// what was wrong without a parallel error-code enum.
var (
	ErrMalformedProtocolName         = ReasonCode{Code: 0x81, Reason: "malformed packet: protocol name"}
	ErrMalformedProtocolVersion      = ReasonCode{Code: 0x81, Reason: "malformed packet: protocol version"}
	ErrMalformedFlags                = ReasonCode{Code: 0x81, Reason: "malformed packet: reserved flags"}
	ErrMalformedPacketID             = ReasonCode{Code: 0x81, Reason: "malformed packet: packet identifier"}
	ErrMalformedUTF8                 = ReasonCode{Code: 0x81, Reason: "malformed packet: invalid utf-8 string"}
	ErrMalformedVariableByteInteger  = ReasonCode{Code: 0x81, Reason: "malformed packet: variable byte integer out of range"}
	ErrMalformedDuplicateProperty    = ReasonCode{Code: 0x81, Reason: "malformed packet: duplicate non-repeatable property"}
	ErrMalformedUnknownProperty      = ReasonCode{Code: 0x81, Reason: "malformed packet: unknown property identifier"}
	ErrMalformedConnectFlagsReserved = ReasonCode{Code: 0x81, Reason: "malformed packet: connect flags reserved bit set"}
)

// Protocol-violation sub-reasons. All carry Code 0x82.
var (
	ErrProtocolViolationQoSOutOfRange    = ReasonCode{Code: 0x82, Reason: "protocol violation: qos out of range"}
	ErrProtocolViolationNoPacketID       = ReasonCode{Code: 0x82, Reason: "protocol violation: missing packet identifier"}
	ErrProtocolViolationSurplusPacketID  = ReasonCode{Code: 0x82, Reason: "protocol violation: surplus packet identifier"}
	ErrProtocolViolationEmptyTopic       = ReasonCode{Code: 0x82, Reason: "protocol violation: empty topic with no alias"}
	ErrProtocolViolationWildcardInTopic  = ReasonCode{Code: 0x82, Reason: "protocol violation: topic name contains wildcards"}
	ErrProtocolViolationNoFilters        = ReasonCode{Code: 0x82, Reason: "protocol violation: must contain at least one filter"}
	ErrProtocolViolationDupOnQoS0        = ReasonCode{Code: 0x82, Reason: "protocol violation: dup set on qos 0 publish"}
	ErrProtocolViolationWillFlagNoWill   = ReasonCode{Code: 0x82, Reason: "protocol violation: will flag clear but will fields present"}
	ErrProtocolViolationUnexpectedPacket = ReasonCode{Code: 0x82, Reason: "protocol violation: unexpected packet for connection state"}
)

// IsMalformed reports whether err is (or wraps) a ReasonCode with Code
// 0x81, the "structurally invalid" category from spec §4.1.
func IsMalformed(err error) bool {
	var rc ReasonCode
	return errors.As(err, &rc) && rc.Code == ErrMalformedPacket.Code
}

// IsProtocolError reports whether err is (or wraps) a ReasonCode with Code
// 0x82, the "semantically illegal" category from spec §4.1.
func IsProtocolError(err error) bool {
	var rc ReasonCode
	return errors.As(err, &rc) && rc.Code == ErrProtocolError.Code
}
