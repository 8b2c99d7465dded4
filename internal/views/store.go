package views

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stderrors "errors"

	"github.com/rupayx/wallet-service/internal/infrastructure/redis"
)

const sessionTTL = 24 * time.Hour

// envelope is the wire form of a view state: the screen name plus that
// screen's own fields.
type envelope struct {
	View string          `json:"view"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Marshal encodes a view state as a JSON envelope.
func Marshal(s State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{View: s.Name(), Data: data})
}

// Unmarshal decodes a JSON envelope back into its view state.
func Unmarshal(raw []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	var s State
	switch env.View {
	case Login{}.Name():
		s = Login{}
	case AdminLogin{}.Name():
		s = AdminLogin{}
	case Verify{}.Name():
		var v Verify
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return nil, err
			}
		}
		s = v
	case Home{}.Name():
		s = Home{}
	case Upi{}.Name():
		s = Upi{}
	case Buy{}.Name():
		var v Buy
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &v); err != nil {
				return nil, err
			}
		}
		s = v
	case Sell{}.Name():
		s = Sell{}
	case Bill{}.Name():
		s = Bill{}
	case Help{}.Name():
		s = Help{}
	case Profile{}.Name():
		s = Profile{}
	case Refer{}.Name():
		s = Refer{}
	case AdminHome{}.Name():
		s = AdminHome{}
	case AdminBank{}.Name():
		s = AdminBank{}
	case AdminBuyRequests{}.Name():
		s = AdminBuyRequests{}
	case AdminSellRequests{}.Name():
		s = AdminSellRequests{}
	case AdminUsers{}.Name():
		s = AdminUsers{}
	case AdminHelp{}.Name():
		s = AdminHelp{}
	case AdminSettings{}.Name():
		s = AdminSettings{}
	default:
		return nil, fmt.Errorf("unknown view %q", env.View)
	}
	return s, nil
}

// Store persists each session's current view in Redis so the client can
// resume where it left off.
type Store struct {
	redisClient redis.RedisClient
}

func NewStore(redisClient redis.RedisClient) *Store {
	return &Store{redisClient: redisClient}
}

func sessionKey(session string) string {
	return fmt.Sprintf("session:%s:view", session)
}

func (s *Store) Save(ctx context.Context, session string, state State) error {
	raw, err := Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	return s.redisClient.Set(ctx, sessionKey(session), string(raw), sessionTTL)
}

// Load returns the session's saved view, or Home when nothing is saved.
func (s *Store) Load(ctx context.Context, session string) (State, error) {
	raw, err := s.redisClient.Get(ctx, sessionKey(session))
	if err != nil {
		if stderrors.Is(err, redis.ErrKeyNotFound) {
			return Home{}, nil
		}
		return nil, err
	}
	return Unmarshal([]byte(raw))
}
