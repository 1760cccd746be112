package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
)

// BattleMetadataKey selects the battle for requests that carry no "battle"
// field, such as Snapshot.
const BattleMetadataKey = "battle-id"

var _ CombatServiceServer = (*CombatService)(nil)

// CombatService implements CombatServiceServer over the hosted battles.
//
// A request names its battle with a "battle" field or BattleMetadataKey
// metadata; when it names none and exactly one battle is hosted, that
// battle is used.
type CombatService struct {
	logger *zap.Logger

	mu      sync.RWMutex
	battles map[uuid.UUID]*Battle
}

// NewCombatService creates a service hosting no battles.
//
// Precondition: logger must be non-nil.
func NewCombatService(logger *zap.Logger) *CombatService {
	return &CombatService{logger: logger, battles: make(map[uuid.UUID]*Battle)}
}

// Host makes b reachable through the service.
func (s *CombatService) Host(b *Battle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battles[b.ID] = b
}

// Remove stops serving the battle with id.
func (s *CombatService) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.battles, id)
}

// Battles returns the hosted battle IDs in string order.
func (s *CombatService) Battles() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.battles))
	for id := range s.battles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Join spawns a player actor.
//
// Request: {battle?, class, name?, position?: [x,y,z]}.
// Response: {actor, battle}.
func (s *CombatService) Join(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	b, err := s.battle(ctx, req)
	if err != nil {
		return nil, err
	}
	class := req.GetFields()["class"].GetStringValue()
	if class == "" {
		return nil, status.Error(codes.InvalidArgument, "class is required")
	}
	pos, err := vectorField(req, "position")
	if err != nil {
		return nil, err
	}
	id, err := b.Spawn(sim.SpawnSpec{
		Class:    ship.Class(class),
		Name:     req.GetFields()["name"].GetStringValue(),
		Faction:  combat.FactionPlayer,
		Position: pos,
		Player:   true,
	})
	if err != nil {
		return nil, status.Errorf(codes.FailedPrecondition, "join: %v", err)
	}
	return structpb.NewStruct(map[string]any{
		"actor":  id.String(),
		"battle": b.ID.String(),
	})
}

// SubmitIntent applies one player intent.
//
// Request: {battle?, actor, kind, index?, vector?: [x,y,z]}.
// Response: {accepted: true, tick}.
func (s *CombatService) SubmitIntent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	b, err := s.battle(ctx, req)
	if err != nil {
		return nil, err
	}
	actor, err := actorField(req)
	if err != nil {
		return nil, err
	}
	in, err := intentFrom(req)
	if err != nil {
		return nil, err
	}
	if err := b.Submit(actor, in); err != nil {
		return nil, submitStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"accepted": true,
		"tick":     float64(b.Tick()),
	})
}

// Snapshot returns the msgpack-encoded sim.Snapshot of the battle.
func (s *CombatService) Snapshot(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	b, err := s.battle(ctx, nil)
	if err != nil {
		return nil, err
	}
	data, err := b.Snapshot().Encode()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "snapshot: %v", err)
	}
	return wrapperspb.Bytes(data), nil
}

// AimAssist returns the lead indicator of a player actor.
//
// Request: {battle?, actor}.
// Response: {available} plus {target, current, lead, predicted} when available.
func (s *CombatService) AimAssist(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	b, err := s.battle(ctx, req)
	if err != nil {
		return nil, err
	}
	actor, err := actorField(req)
	if err != nil {
		return nil, err
	}
	aa, ok, err := b.AimAssist(actor)
	if err != nil {
		return nil, submitStatus(err)
	}
	if !ok {
		return structpb.NewStruct(map[string]any{"available": false})
	}
	return structpb.NewStruct(map[string]any{
		"available": true,
		"target":    aa.Target.String(),
		"current":   vectorList(aa.Current),
		"lead":      vectorList(aa.Lead),
		"predicted": aa.Predicted,
	})
}

// Events streams the battle's events as msgpack event.Envelope payloads
// until the client goes away or the battle closes. The envelope tick is
// the battle tick when the event was forwarded.
//
// Request: {battle?, buffer?}.
func (s *CombatService) Events(req *structpb.Struct, stream grpc.ServerStreamingServer[wrapperspb.BytesValue]) error {
	ctx := stream.Context()
	b, err := s.battle(ctx, req)
	if err != nil {
		return err
	}
	sub := b.Bus().Subscribe(int(req.GetFields()["buffer"].GetNumberValue()))
	defer b.Bus().Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := event.Encode(b.Tick(), e)
			if err != nil {
				s.logger.Warn("dropping unencodable event", zap.String("kind", string(e.Kind())), zap.Error(err))
				continue
			}
			if err := stream.Send(wrapperspb.Bytes(data)); err != nil {
				return err
			}
		}
	}
}

func (s *CombatService) battle(ctx context.Context, req *structpb.Struct) (*Battle, error) {
	raw := req.GetFields()["battle"].GetStringValue()
	if raw == "" {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(BattleMetadataKey); len(vals) > 0 {
				raw = vals[0]
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if raw == "" {
		if len(s.battles) == 1 {
			for _, b := range s.battles {
				return b, nil
			}
		}
		return nil, status.Errorf(codes.InvalidArgument, "battle is required when %d battles are hosted", len(s.battles))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "battle %q: %v", raw, err)
	}
	b, ok := s.battles[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "battle %s not found", id)
	}
	return b, nil
}

func actorField(req *structpb.Struct) (uuid.UUID, error) {
	raw := req.GetFields()["actor"].GetStringValue()
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "actor %q: %v", raw, err)
	}
	return id, nil
}

func vectorField(req *structpb.Struct, name string) (geom.Vec3, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return geom.Zero, nil
	}
	vals := v.GetListValue().GetValues()
	if len(vals) != 3 {
		return geom.Zero, status.Errorf(codes.InvalidArgument, "%s must be a list of 3 numbers", name)
	}
	for _, x := range vals {
		if _, ok := x.GetKind().(*structpb.Value_NumberValue); !ok {
			return geom.Zero, status.Errorf(codes.InvalidArgument, "%s must be a list of 3 numbers", name)
		}
	}
	out := geom.V(vals[0].GetNumberValue(), vals[1].GetNumberValue(), vals[2].GetNumberValue())
	if !out.IsFinite() {
		return geom.Zero, status.Errorf(codes.InvalidArgument, "%s must be finite", name)
	}
	return out, nil
}

func vectorList(v geom.Vec3) []any { return []any{v.X, v.Y, v.Z} }

func intentFrom(req *structpb.Struct) (sim.Intent, error) {
	in := sim.Intent{Kind: sim.IntentKind(req.GetFields()["kind"].GetStringValue())}
	if in.Kind == "" {
		return sim.Intent{}, status.Error(codes.InvalidArgument, "kind is required")
	}
	if idx, ok := req.GetFields()["index"]; ok {
		n := idx.GetNumberValue()
		if n != float64(int(n)) {
			return sim.Intent{}, status.Errorf(codes.InvalidArgument, "index %v is not an integer", n)
		}
		in.Index = int(n)
	}
	vec, err := vectorField(req, "vector")
	if err != nil {
		return sim.Intent{}, err
	}
	in.Vector = vec
	return in, nil
}

func submitStatus(err error) error {
	switch {
	case errors.Is(err, ErrUnknownActor), errors.Is(err, sim.ErrUnknownActor):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, sim.ErrNotPlayer):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.InvalidArgument, fmt.Sprintf("intent rejected: %v", err))
	}
}
