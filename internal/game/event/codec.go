package event

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Envelope is the wire form of an event: its kind and the msgpack body.
type Envelope struct {
	Kind Kind               `msgpack:"kind"`
	Tick uint64             `msgpack:"tick"`
	Body msgpack.RawMessage `msgpack:"body"`
}

// Encode wraps e in an Envelope stamped with tick and serializes it.
func Encode(tick uint64, e Event) ([]byte, error) {
	body, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", e.Kind(), err)
	}
	b, err := msgpack.Marshal(Envelope{Kind: e.Kind(), Tick: tick, Body: body})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", e.Kind(), err)
	}
	return b, nil
}

// Decode parses an Encode result back into its tick and concrete event.
//
// Postcondition: an unknown kind is an error.
func Decode(b []byte) (uint64, Event, error) {
	var env Envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return 0, nil, fmt.Errorf("decoding envelope: %w", err)
	}
	var (
		e   Event
		err error
	)
	switch env.Kind {
	case KindHit:
		e, err = decodeAs[Hit](env.Body)
	case KindActorDestroyed:
		e, err = decodeAs[ActorDestroyed](env.Body)
	case KindShieldBroken:
		e, err = decodeAs[ShieldBroken](env.Body)
	case KindDamageDealt:
		e, err = decodeAs[DamageDealt](env.Body)
	case KindKill:
		e, err = decodeAs[Kill](env.Body)
	case KindOverheated:
		e, err = decodeAs[Overheated](env.Body)
	default:
		return 0, nil, fmt.Errorf("decoding envelope: unknown event kind %q", env.Kind)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("decoding %s event: %w", env.Kind, err)
	}
	return env.Tick, e, nil
}

func decodeAs[E Event](body []byte) (Event, error) {
	var e E
	if err := msgpack.Unmarshal(body, &e); err != nil {
		return nil, err
	}
	return e, nil
}
