package poster

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postergo/pkg/config"
	"postergo/pkg/layout"
	"postergo/pkg/model"
	"postergo/pkg/palette"
	"postergo/pkg/render"
	"postergo/pkg/store"
	"postergo/pkg/tracker"
)

type fakePosterStore struct {
	saved []*model.PosterRecord
}

func (f *fakePosterStore) SavePoster(_ context.Context, p *model.PosterRecord) error {
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakePosterStore) GetPoster(context.Context, string) (*model.PosterRecord, error) {
	return nil, nil
}

func (f *fakePosterStore) ListPosters(context.Context, int) ([]*model.PosterRecord, error) {
	return nil, nil
}

func (f *fakePosterStore) DeletePoster(context.Context, string) error { return nil }

type fakeStateStore struct {
	vals map[string]string
}

func (f *fakeStateStore) GetState(_ context.Context, key string) (string, bool) {
	v, ok := f.vals[key]
	return v, ok
}

func (f *fakeStateStore) SetState(_ context.Context, key, val string) error {
	if f.vals == nil {
		f.vals = make(map[string]string)
	}
	f.vals[key] = val
	return nil
}

func (f *fakeStateStore) DeleteState(_ context.Context, key string) error {
	delete(f.vals, key)
	return nil
}

type panickyMap struct{}

func (panickyMap) RenderMap(context.Context, []model.Coordinate, model.RegionSize) string {
	panic("tile meltdown")
}

func testActivity() *model.ActivityRecord {
	coords := make([]model.Coordinate, 10)
	for i := range coords {
		coords[i] = model.Coordinate{
			Lat:         48.85 + float64(i)*0.001,
			Lon:         2.35,
			Altitude:    100 + float64(i)*5,
			HasAltitude: true,
		}
	}
	return &model.ActivityRecord{
		ID:            42,
		Name:          "Sortie matinale",
		Type:          "Run",
		Distance:      10000,
		MovingTime:    3000,
		ElevationGain: 45,
		StartDate:     "2024-01-15T08:30:00Z",
		Coordinates:   coords,
		KmSplits: []model.KmSplit{
			{Km: 1, Pace: 5.2}, {Km: 2, Pace: 4.9}, {Km: 3, Pace: 5.0},
			{Km: 4, Pace: 5.1}, {Km: 5, Pace: 4.8},
		},
	}
}

func testGenerator(t *testing.T, mapRender render.MapRenderer, st *fakePosterStore, tr *tracker.Tracker) *Generator {
	t.Helper()
	manager, err := layout.NewManager(filepath.Join("..", "..", "templates", "poster_framework.svg"))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	pal := palette.Default()
	charts := render.New(cfg.Renderer, pal)
	if mapRender == nil {
		mapRender = charts
	}
	var ps store.PosterStore
	if st != nil {
		ps = st
	}
	return NewGenerator(manager, layout.NewScanner(cfg.Scanner), charts, mapRender, pal, ps, nil, tr)
}

// fragmentOf extracts the SVG group with the given id from the document.
func fragmentOf(t *testing.T, doc, id string) string {
	t.Helper()
	start := strings.Index(doc, `<g id="`+id+`"`)
	require.GreaterOrEqual(t, start, 0, "group %s missing", id)
	end := strings.Index(doc[start:], "</g>")
	require.GreaterOrEqual(t, end, 0)
	return doc[start : start+end]
}

func TestGenerateFullPoster(t *testing.T) {
	g := testGenerator(t, nil, nil, nil)

	doc, err := g.Generate(t.Context(), testActivity())
	require.NoError(t, err)

	assert.Contains(t, doc, `<g id="pace-histogram"`)
	assert.Contains(t, doc, `<g id="gps-track"`)
	assert.Contains(t, doc, `<g id="elevation-profile"`)

	assert.Equal(t, 1, strings.Count(fragmentOf(t, doc, "gps-track"), "<path"), "one track path")
	assert.Equal(t, 5, strings.Count(fragmentOf(t, doc, "pace-histogram"), "<rect"), "one bar per split")
	elevation := fragmentOf(t, doc, "elevation-profile")
	assert.Equal(t, 2, strings.Count(elevation, "<path"), "area fill plus profile line")
	assert.Contains(t, elevation, "fill-opacity")

	assert.Contains(t, doc, "Sortie matinale")
	assert.Contains(t, doc, "Course")
	assert.Contains(t, doc, "10.0 km")
	assert.Contains(t, doc, "50m")
	assert.Contains(t, doc, "15 Jan 2024")
	assert.Contains(t, doc, "12.0 km/h")
	assert.Contains(t, doc, "5:00")
	assert.Contains(t, doc, "#F8F8F8", "background color resolved")

	assert.NotContains(t, doc, "{{", "no unresolved markers")
}

func TestGenerateCountsPosters(t *testing.T) {
	tr := tracker.New()
	g := testGenerator(t, nil, nil, tr)

	_, err := g.Generate(t.Context(), testActivity())
	require.NoError(t, err)

	totals, _ := tr.Snapshot()
	assert.Equal(t, int64(1), totals.PostersGenerated)
}

func TestGenerateSurvivesRendererPanic(t *testing.T) {
	tr := tracker.New()
	g := testGenerator(t, panickyMap{}, nil, tr)

	doc, err := g.Generate(t.Context(), testActivity())
	require.NoError(t, err)

	assert.NotContains(t, doc, `<g id="gps-track"`, "panicked fragment dropped")
	assert.Contains(t, doc, `<g id="pace-histogram"`, "other fragments unaffected")

	totals, _ := tr.Snapshot()
	assert.Equal(t, int64(1), totals.RendererFailures)
}

func TestGenerateNilActivity(t *testing.T) {
	g := testGenerator(t, nil, nil, nil)

	_, err := g.Generate(t.Context(), nil)
	require.Error(t, err)
}

func TestArchive(t *testing.T) {
	st := &fakePosterStore{}
	g := testGenerator(t, nil, st, nil)

	activity := testActivity()
	doc, err := g.Generate(t.Context(), activity)
	require.NoError(t, err)

	record, err := g.Archive(t.Context(), activity, doc)
	require.NoError(t, err)

	assert.NotEmpty(t, record.UUID)
	assert.Equal(t, int64(42), record.ActivityID)
	assert.Equal(t, doc, record.SVG)
	assert.False(t, record.CreatedAt.IsZero())
	require.Len(t, st.saved, 1)
}

func TestArchiveRecordsLatest(t *testing.T) {
	st := &fakePosterStore{}
	state := &fakeStateStore{}
	g := testGenerator(t, nil, st, nil)
	g.state = state

	activity := testActivity()
	doc, err := g.Generate(t.Context(), activity)
	require.NoError(t, err)

	record, err := g.Archive(t.Context(), activity, doc)
	require.NoError(t, err)

	latest, ok := state.GetState(t.Context(), LastPosterKey)
	require.True(t, ok)
	assert.Equal(t, record.UUID, latest)
}

func TestArchiveWithoutStore(t *testing.T) {
	g := testGenerator(t, nil, nil, nil)

	_, err := g.Archive(t.Context(), testActivity(), "<svg/>")
	require.Error(t, err)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "poster.svg")
	require.NoError(t, Save(path, "<svg/>"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestSaveBadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := Save(filepath.Join(blocker, "x.svg"), "<svg/>")
	require.Error(t, err)
}
