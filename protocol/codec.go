package protocol

import (
	"errors"
	"fmt"
	"reflect"

	"go.dedis.ch/protobuf"
)

var (
	// ErrUnknownKind is returned when an envelope carries an unknown tag.
	ErrUnknownKind = errors.New("unknown message kind")
	// ErrMalformed is returned when a payload cannot be decoded or fails
	// validation.
	ErrMalformed = errors.New("malformed message")
)

type envelope struct {
	Kind uint32
	Body []byte
}

var decoders = map[Kind]func([]byte) (Message, error){
	KindPlayerInitInfo:          decodeAs[PlayerInitInfo],
	KindUpdatePlayerPosition:    decodeAs[UpdatePlayerPosition],
	KindDuelDemand:              decodeAs[DuelDemand],
	KindDuelAccepted:            decodeAs[DuelAccepted],
	KindDuelRefused:             decodeAs[DuelRefused],
	KindDuelCancelled:           decodeAs[DuelCancelled],
	KindCombatPlayerJoined:      decodeAs[CombatPlayerJoined],
	KindCombatStart:             decodeAs[CombatStart],
	KindCombatReadyStateChanged: decodeAs[CombatReadyStateChanged],
	KindTurnEnded:               decodeAs[TurnEnded],
}

func decodeAs[M Message](body []byte) (Message, error) {
	var m M
	if err := protobuf.Decode(body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes msg into a self-describing payload.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("nil message")
	}
	if _, ok := decoders[msg.Kind()]; !ok {
		return nil, fmt.Errorf("encode %v: %w", msg.Kind(), ErrUnknownKind)
	}
	ptr := reflect.New(reflect.TypeOf(msg))
	ptr.Elem().Set(reflect.ValueOf(msg))
	body, err := protobuf.Encode(ptr.Interface())
	if err != nil {
		return nil, fmt.Errorf("encode %v body: %w", msg.Kind(), err)
	}
	data, err := protobuf.Encode(&envelope{Kind: uint32(msg.Kind()), Body: body})
	if err != nil {
		return nil, fmt.Errorf("encode %v envelope: %w", msg.Kind(), err)
	}
	return data, nil
}

// Decode parses a payload produced by Encode.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := protobuf.Decode(data, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformed, err)
	}
	decode, ok := decoders[Kind(env.Kind)]
	if !ok {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownKind, env.Kind)
	}
	msg, err := decode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v body: %v", ErrMalformed, Kind(env.Kind), err)
	}
	if v, ok := msg.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrMalformed, Kind(env.Kind), err)
		}
	}
	return msg, nil
}
