package gameserver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
)

// testGRPCServer starts an in-process gRPC server hosting battles and
// returns a connected client.
func testGRPCServer(t *testing.T, battles ...*gameserver.Battle) *gameserver.CombatServiceClient {
	t.Helper()
	svc := gameserver.NewCombatService(zaptest.NewLogger(t))
	for _, b := range battles {
		svc.Host(b)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	gameserver.RegisterCombatServiceServer(grpcServer, svc)

	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(func() { grpcServer.Stop() })

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return gameserver.NewCombatServiceClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCombatService_JoinAndSubmitIntent(t *testing.T) {
	b := newTestBattle(t)
	client := testGRPCServer(t, b)
	ctx := testCtx(t)

	resp, err := client.Join(ctx, mustStruct(t, map[string]any{
		"class":    "corvette",
		"name":     "Blue",
		"position": []any{0.0, 0.0, -10.0},
	}))
	require.NoError(t, err)
	assert.Equal(t, b.ID.String(), resp.Fields["battle"].GetStringValue())
	actor, err := uuid.Parse(resp.Fields["actor"].GetStringValue())
	require.NoError(t, err)

	v, ok := b.Actor(actor)
	require.True(t, ok)
	assert.Equal(t, "Blue", v.Name)
	assert.Equal(t, -10.0, v.Position.Z)

	resp, err = client.SubmitIntent(ctx, mustStruct(t, map[string]any{
		"actor": actor.String(),
		"kind":  string(sim.IntentSelectWeapon),
		"index": 1,
	}))
	require.NoError(t, err)
	assert.True(t, resp.Fields["accepted"].GetBoolValue())

	v, _ = b.Actor(actor)
	assert.Equal(t, 1, v.Current)
}

func TestCombatService_SubmitIntentStatusCodes(t *testing.T) {
	b := newTestBattle(t)
	player, enemy := duel(t, b)
	client := testGRPCServer(t, b)
	ctx := testCtx(t)

	cases := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{"malformed actor", map[string]any{"actor": "x", "kind": "fire_primary"}, codes.InvalidArgument},
		{"unknown actor", map[string]any{"actor": uuid.NewString(), "kind": "fire_primary"}, codes.NotFound},
		{"ai actor", map[string]any{"actor": enemy.String(), "kind": "fire_primary"}, codes.FailedPrecondition},
		{"missing kind", map[string]any{"actor": player.String()}, codes.InvalidArgument},
		{"unknown kind", map[string]any{"actor": player.String(), "kind": "warp"}, codes.InvalidArgument},
		{"index out of range", map[string]any{"actor": player.String(), "kind": "select_weapon", "index": 9}, codes.InvalidArgument},
		{"fractional index", map[string]any{"actor": player.String(), "kind": "select_weapon", "index": 0.5}, codes.InvalidArgument},
		{"short vector", map[string]any{"actor": player.String(), "kind": "steer", "vector": []any{1.0}}, codes.InvalidArgument},
		{"unknown battle", map[string]any{"battle": uuid.NewString(), "actor": player.String(), "kind": "reload"}, codes.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.SubmitIntent(ctx, mustStruct(t, tc.req))
			require.Error(t, err)
			assert.Equal(t, tc.code, status.Code(err))
		})
	}
}

func TestCombatService_Snapshot(t *testing.T) {
	b := newTestBattle(t)
	duel(t, b)
	b.Step(context.Background())
	client := testGRPCServer(t, b)

	resp, err := client.Snapshot(testCtx(t), &emptypb.Empty{})
	require.NoError(t, err)
	snap, err := sim.DecodeSnapshot(resp.GetValue())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Len(t, snap.Actors, 2)
}

func TestCombatService_BattleSelection(t *testing.T) {
	first, second := newTestBattle(t), newTestBattle(t)
	duel(t, second)
	client := testGRPCServer(t, first, second)

	_, err := client.Snapshot(testCtx(t), &emptypb.Empty{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "ambiguous without a battle id")

	ctx := metadata.AppendToOutgoingContext(testCtx(t), gameserver.BattleMetadataKey, second.ID.String())
	resp, err := client.Snapshot(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	snap, err := sim.DecodeSnapshot(resp.GetValue())
	require.NoError(t, err)
	assert.Len(t, snap.Actors, 2)
}

func TestCombatService_AimAssist(t *testing.T) {
	b := newTestBattle(t)
	player, _ := duel(t, b)
	client := testGRPCServer(t, b)

	resp, err := client.AimAssist(testCtx(t), mustStruct(t, map[string]any{"actor": player.String()}))
	require.NoError(t, err)
	require.True(t, resp.Fields["available"].GetBoolValue())
	lead := resp.Fields["lead"].GetListValue().GetValues()
	require.Len(t, lead, 3)
	assert.InDelta(t, 30.0, lead[2].GetNumberValue(), 1e-9, "a stationary target leads to itself")
	assert.True(t, resp.Fields["predicted"].GetBoolValue())

	lone := newTestBattle(t)
	solo, err := lone.Spawn(sim.SpawnSpec{Class: "fighter", Player: true})
	require.NoError(t, err)
	client = testGRPCServer(t, lone)
	resp, err = client.AimAssist(testCtx(t), mustStruct(t, map[string]any{"actor": solo.String()}))
	require.NoError(t, err)
	assert.False(t, resp.Fields["available"].GetBoolValue())
}

func TestCombatService_EventsStream(t *testing.T) {
	b := newTestBattle(t)
	player, _ := duel(t, b)
	client := testGRPCServer(t, b)
	ctx := testCtx(t)

	stream, err := client.Events(ctx, mustStruct(t, map[string]any{"buffer": 64}))
	require.NoError(t, err)

	// the subscription is registered asynchronously; keep firing until an
	// event arrives
	got := make(chan event.Event, 1)
	go func() {
		msg, err := stream.Recv()
		if err != nil {
			return
		}
		if _, e, err := event.Decode(msg.GetValue()); err == nil {
			got <- e
		}
	}()

	deadline := time.After(4 * time.Second)
	for {
		select {
		case e := <-got:
			assert.Contains(t, []event.Kind{event.KindHit, event.KindOverheated}, e.Kind())
			return
		case <-deadline:
			t.Fatal("no event received")
		default:
		}
		_ = b.Submit(player, sim.Intent{Kind: sim.IntentFirePrimary})
		b.Step(ctx)
		time.Sleep(time.Millisecond)
	}
}
