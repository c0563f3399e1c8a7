package svg

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/testutil"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<svg xmlns="http://www.w3.org/2000/svg" width="900" height="480" viewBox="0 0 900 480" style="background:#fffdf7">` +
	`<style>` + styleSheet + `</style>`

func TestRender_SingleNode(t *testing.T) {
	events := testutil.NewLog().NodeAdd("n1", 10, 20).Events()

	got := Render(events, Options{})

	want := header +
		`<rect data-node-id="n1" class="node" x="6" y="16" width="8" height="8" fill="#2c1f16" />` +
		`</svg>`
	assert.Equal(t, want, got)
	assert.Equal(t, 1, strings.Count(got, "<rect"))
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, header+`</svg>`, Render(nil, Options{}))
}

func TestRender_CustomCanvas(t *testing.T) {
	got := Render(nil, Options{Width: 320.5, Height: 200, Background: "#000"})
	assert.Contains(t, got, `width="320.5" height="200" viewBox="0 0 320.5 200" style="background:#000"`)
}

func TestRender_EdgesBeforeNodesThenCursors(t *testing.T) {
	events := testutil.NewLog().
		CursorMove(1, 2).
		NodeAdd("a", 0, 0).
		NodeAdd("b", 30, 40).
		EdgeAdd("ab", "a", "b").
		Events()

	got := Render(events, Options{})

	edge := strings.Index(got, "<line")
	nodeA := strings.Index(got, `data-node-id="a"`)
	nodeB := strings.Index(got, `data-node-id="b"`)
	cursor := strings.Index(got, "<circle")
	require.True(t, edge >= 0 && nodeA >= 0 && nodeB >= 0 && cursor >= 0)
	assert.Less(t, edge, nodeA)
	assert.Less(t, nodeA, nodeB)
	assert.Less(t, nodeB, cursor)

	assert.Contains(t, got, `<line data-edge-id="ab" class="edge" x1="0" y1="0" x2="30" y2="40" stroke="#2c1f16" stroke-width="1" />`)
	assert.Contains(t, got, `<circle cx="1" cy="2" r="3" fill="#a24b2d" opacity="0.6" />`)
}

func TestRender_EdgeLiteralCoordinates(t *testing.T) {
	events := testutil.NewLog().
		NodeAdd("a", 5, 5).
		EdgeAddWith("e", "a", "ghost", map[string]any{"x1": 1, "y1": 2, "x2": 3, "y2": 4}).
		Add(event.TypeEdgeAdd, map[string]any{"id": "free", "x1": 7, "y1": 8, "x2": "9", "y2": "bad"}).
		Events()

	got := Render(events, Options{})

	assert.Contains(t, got, `data-edge-id="e" class="edge" x1="5" y1="5" x2="3" y2="4"`)
	assert.Contains(t, got, `data-edge-id="free" class="edge" x1="7" y1="8" x2="9" y2="0"`)
}

func TestRender_EdgeResolvesAgainstFinalPositions(t *testing.T) {
	events := testutil.NewLog().
		EdgeAdd("e", "a", "b").
		NodeAdd("a", 0, 0).
		NodeAdd("b", 10, 0).
		NodeMove("b", 20, 5).
		Events()

	got := Render(events, Options{})

	assert.Contains(t, got, `x1="0" y1="0" x2="20" y2="5"`)
}

func TestRender_SelectedAndRemoved(t *testing.T) {
	events := testutil.NewLog().
		NodeAdd("a", 0, 0).
		NodeAdd("b", 1, 1).
		EdgeAdd("ab", "a", "b").
		NodeSelect("a").
		EdgeRemove("ab").
		Events()

	got := Render(events, Options{})

	assert.Contains(t, got, `<rect data-node-id="a" class="node selected" x="-4" y="-4"`)
	assert.Contains(t, got, `<line data-edge-id="ab" class="edge removed" data-removed="true" x1="0" y1="0" x2="1" y2="1"`)
	assert.NotContains(t, got, "<animate")
}

func TestRender_MoveAndSelectCreateUnknownNodes(t *testing.T) {
	events := testutil.NewLog().
		NodeMove("m", 3, 3).
		NodeSelect("s").
		Events()

	sc := BuildScene(events)
	nodes := sc.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "m", nodes[0].ID)
	assert.Equal(t, []Point{{X: 3, Y: 3}}, nodes[0].History)
	assert.Equal(t, "s", nodes[1].ID)
	assert.True(t, nodes[1].Selected)
	assert.Equal(t, 1, nodes[1].SelectedAt)
	assert.Empty(t, nodes[1].History)
}

func TestRender_DuplicateNodeAddKeepsFirst(t *testing.T) {
	events := testutil.NewLog().NodeAdd("a", 1, 1).NodeAdd("a", 50, 50).Events()

	got := Render(events, Options{})

	assert.Equal(t, 1, strings.Count(got, "<rect"))
	assert.Contains(t, got, `x="-3" y="-3"`)
}

func TestRender_SkipsEventsWithoutPayload(t *testing.T) {
	events := testutil.NewLog().
		Add(event.TypeNodeAdd, nil).
		Add(event.TypeCursorMove, nil).
		Add(event.TypeNodeMove, map[string]any{"x": 1}).
		Events()

	assert.Equal(t, header+`</svg>`, Render(events, Options{}))
}

func TestRender_EscapesAttributeValues(t *testing.T) {
	events := testutil.NewLog().NodeAdd(`a"<b>&`, 0, 0).Events()

	got := Render(events, Options{})

	assert.Contains(t, got, `data-node-id="a&quot;&lt;b&gt;&amp;"`)
}

func TestRender_Animate(t *testing.T) {
	events := testutil.NewLog().
		NodeAdd("a", 0, 0).
		NodeAdd("b", 10, 10).
		EdgeAdd("ab", "a", "b").
		NodeMove("a", 20, 0).
		NodeSelect("a").
		EdgeRemove("ab").
		Events()

	got := Render(events, Options{Animate: true, StepMs: 100})

	assert.Contains(t, got,
		`<line data-edge-id="ab" class="edge removed" data-removed="true" x1="20" y1="0" x2="10" y2="10" stroke="#2c1f16" stroke-width="1">`+
			`<animate attributeName="opacity" begin="500ms" dur="100ms" values="1;0.2" fill="freeze" /></line>`)
	assert.Contains(t, got,
		`<rect data-node-id="a" class="node selected" x="16" y="-4" width="8" height="8" fill="#2c1f16">`+
			`<animate attributeName="x" dur="100ms" values="-4;16" fill="freeze" />`+
			`<animate attributeName="y" dur="100ms" values="-4;-4" fill="freeze" />`+
			`<animate attributeName="stroke" begin="400ms" dur="100ms" values="#2c1f16;#a24b2d" fill="freeze" />`+
			`</rect>`)
	// Node b never moved or got selected, so it stays static.
	assert.Contains(t, got, `<rect data-node-id="b" class="node" x="6" y="6" width="8" height="8" fill="#2c1f16" />`)
}

func TestRender_FractionalCoordinates(t *testing.T) {
	events := testutil.NewLog().NodeAdd("a", 0.1, 1e-7).Events()

	got := Render(events, Options{})

	assert.Contains(t, got, `x="-3.9" y="-3.9999999"`)
}

func TestContract_RendersAtFinalize(t *testing.T) {
	events := testutil.NewLog().NodeAdd("n1", 10, 20).Events()

	got, err := contract.Run(NewContract(Options{}), events)
	require.NoError(t, err)
	assert.Equal(t, Render(events, Options{}), got)

	again, err := contract.Run(NewContract(Options{}), events)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestRender_OnlyNodeRects(t *testing.T) {
	events := testutil.NewLog().NodeAdd("a", 0, 0).NodeAdd("b", 0, 0).EdgeAdd("e", "a", "b").Events()

	got := Render(events, Options{})

	rects := regexp.MustCompile(`<rect\b[^>]*>`).FindAllString(got, -1)
	require.Len(t, rects, 2)
	for _, r := range rects {
		assert.Contains(t, r, "data-node-id")
	}
}
