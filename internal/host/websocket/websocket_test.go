package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/timeconv"
	"github.com/gfox0104/AetPlugin/pkg/streaming"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bridge is a test server that records envelopes and acks begin/end.
type bridge struct {
	mu        sync.Mutex
	messages  []streaming.Envelope
	secrets   []string
	rejectEnd string
}

func (br *bridge) add(env streaming.Envelope) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.messages = append(br.messages, env)
}

func (br *bridge) all() []streaming.Envelope {
	br.mu.Lock()
	defer br.mu.Unlock()
	return append([]streaming.Envelope(nil), br.messages...)
}

func (br *bridge) secretsSeen() []string {
	br.mu.Lock()
	defer br.mu.Unlock()
	return append([]string(nil), br.secrets...)
}

func (br *bridge) types() []string {
	var out []string
	for _, env := range br.all() {
		out = append(out, env.Type)
	}
	return out
}

func testServer(t *testing.T, br *bridge) *httptest.Server {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		br.mu.Lock()
		br.secrets = append(br.secrets, r.URL.Query().Get("secret"))
		br.mu.Unlock()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			br.add(env)

			if env.Type != streaming.TypeBeginProject && env.Type != streaming.TypeEndProject {
				continue
			}
			ack := streaming.AckMessage{Type: streaming.TypeAck, For: env.Type}
			if env.Type == streaming.TypeEndProject {
				ack.Error = br.rejectEnd
			}
			data, _ := json.Marshal(ack)
			if err := c.WriteMessage(ws.TextMessage, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func connect(t *testing.T, br *bridge) *Backend {
	t.Helper()
	srv := testServer(t, br)
	b := New(config.WebSocketConfig{URL: wsURL(srv), Secret: "s3cret"}, nil)
	b.ackTimeout = 2 * time.Second
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBeginAndEndProject(t *testing.T) {
	br := &bridge{}
	b := connect(t, br)

	require.NoError(t, b.BeginProject(host.ProjectInfo{Name: "gam_cmn_main", SourcePath: "aet_gam_cmn.yaml"}))
	require.NoError(t, b.EndProject())

	msgs := br.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, streaming.TypeBeginProject, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndProject, msgs[1].Type)

	var begin streaming.BeginProjectPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &begin))
	root, err := b.ProjectRoot()
	require.NoError(t, err)
	assert.Equal(t, "gam_cmn_main", begin.Name)
	assert.Equal(t, root.String(), begin.Root.String())
	assert.Equal(t, []string{"s3cret"}, br.secretsSeen())
}

func TestAuthoringCallsAreStreamedInOrder(t *testing.T) {
	br := &bridge{}
	b := connect(t, br)
	require.NoError(t, b.BeginProject(host.ProjectInfo{Name: "p"}))

	root, err := b.ProjectRoot()
	require.NoError(t, err)
	folder, err := b.CreateFolder("AetSet", root)
	require.NoError(t, err)
	comp, _, err := b.CreateComp(root, host.CompSpec{
		Name: "main", Width: 4, Height: 4,
		PixelAspect: timeconv.OneToOne,
		Duration:    timeconv.RationalTime{Value: 1, Scale: 1},
		FrameRate:   timeconv.Ratio{Num: 60, Den: 1},
	})
	require.NoError(t, err)
	solid, err := b.NewSolidFootage(folder, host.SolidSpec{Name: "s", Width: 1, Height: 1, Color: host.Color{R: 1, A: 1}})
	require.NoError(t, err)
	layer, err := b.AddLayer(solid, comp)
	require.NoError(t, err)
	require.NoError(t, b.SetLayerFlag(layer, host.LayerFlagShy, true))
	require.NoError(t, b.SetLayerName(layer, "logo"))

	pos, err := b.LayerStream(layer, host.StreamPosition)
	require.NoError(t, err)
	again, err := b.LayerStream(layer, host.StreamPosition)
	require.NoError(t, err)
	assert.Equal(t, pos, again)

	require.NoError(t, b.SetStreamValue(pos, host.StreamValue{X: 1, Y: 2}))
	late, err := b.InsertKeyframe(pos, timeconv.RationalTime{Value: 30, Scale: 60})
	require.NoError(t, err)
	early, err := b.InsertKeyframe(pos, timeconv.RationalTime{Value: 0, Scale: 60})
	require.NoError(t, err)
	assert.Equal(t, 0, late)
	assert.Equal(t, 0, early)
	require.NoError(t, b.SetKeyframeValue(pos, 1, host.StreamValue{X: 5, Y: 6}, 0.5))
	require.NoError(t, b.EndProject())

	assert.Equal(t, []string{
		streaming.TypeBeginProject,
		streaming.TypeCreateFolder,
		streaming.TypeCreateComp,
		streaming.TypeNewSolidFootage,
		streaming.TypeAddLayer,
		streaming.TypeSetLayerFlag,
		streaming.TypeSetLayerName,
		streaming.TypeLayerStream,
		streaming.TypeSetStreamValue,
		streaming.TypeInsertKeyframe,
		streaming.TypeInsertKeyframe,
		streaming.TypeSetKeyframeValue,
		streaming.TypeEndProject,
	}, br.types())

	msgs := br.all()
	var flag streaming.LayerPayload
	require.NoError(t, json.Unmarshal(msgs[5].Payload, &flag))
	assert.Equal(t, layer.String(), flag.Layer.String())
	assert.Equal(t, "shy", flag.Flag)
	require.NotNil(t, flag.On)
	assert.True(t, *flag.On)

	var kf streaming.InsertKeyframePayload
	require.NoError(t, json.Unmarshal(msgs[10].Payload, &kf))
	assert.Equal(t, streaming.Time{Value: 0, Scale: 60}, kf.Time)
	assert.Equal(t, 0, kf.Index)
}

func TestInvalidCallIsNotStreamed(t *testing.T) {
	br := &bridge{}
	b := connect(t, br)
	require.NoError(t, b.BeginProject(host.ProjectInfo{Name: "p"}))

	_, err := b.AddLayer(host.ItemHandle{1}, host.CompHandle{2})
	assert.ErrorIs(t, err, host.ErrUnknownHandle)
	require.NoError(t, b.EndProject())

	assert.Equal(t, []string{streaming.TypeBeginProject, streaming.TypeEndProject}, br.types())
}

func TestEndProject_Rejected(t *testing.T) {
	br := &bridge{rejectEnd: "disk full"}
	b := connect(t, br)
	require.NoError(t, b.BeginProject(host.ProjectInfo{Name: "p"}))

	err := b.EndProject()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestUndeliveredCallAbandonsProject(t *testing.T) {
	br := &bridge{}
	b := connect(t, br)
	require.NoError(t, b.BeginProject(host.ProjectInfo{Name: "p"}))
	root, err := b.ProjectRoot()
	require.NoError(t, err)

	require.NoError(t, b.conn.close())

	_, err = b.CreateFolder("AetSet", root)
	require.ErrorIs(t, err, errClosed)
	folders := len(b.Snapshot().Folders)

	_, err = b.CreateFolder("Other", root)
	require.ErrorIs(t, err, errClosed)
	assert.Len(t, b.Snapshot().Folders, folders, "mirror must not run ahead of the bridge")

	err = b.EndProject()
	require.ErrorIs(t, err, errClosed)
	assert.Contains(t, err.Error(), streaming.TypeCreateFolder)
}

func TestInit_DialFailure(t *testing.T) {
	b := New(config.WebSocketConfig{URL: "ws://127.0.0.1:1/bridge"}, nil)
	assert.Error(t, b.Init())
}

func TestClose_Idempotent(t *testing.T) {
	b := connect(t, &bridge{})
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
