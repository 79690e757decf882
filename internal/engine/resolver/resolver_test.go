package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports/mocks"
	"go.trai.ch/hale/internal/engine/resolver"
)

type fixture struct {
	registry *mocks.MockRegistry
	res      *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	return &fixture{
		registry: mocks.NewMockRegistry(ctrl),
		res:      resolver.New(log),
	}
}

func (f *fixture) input(g *domain.DependencyGraph) resolver.Input {
	return resolver.Input{Graph: g, Registry: f.registry, Config: domain.DefaultConfig().Resolver}
}

// sharedDep builds a graph where the app and one library both constrain
// react, currently at the given version.
func sharedDep(appRange, libRange, current string) *domain.DependencyGraph {
	g := domain.NewDependencyGraph()
	app := g.AddNode("app", "1.0.0")
	lib := g.AddNode("some-lib", "3.1.0")
	react := g.AddNode("react", current)
	g.AddEdge(app, react, appRange)
	g.AddEdge(lib, react, libRange)
	return g
}

func TestResolver_Resolve_PicksNewestSatisfying(t *testing.T) {
	f := newFixture(t)
	g := sharedDep("^18.0.0", ">=18.2.0 <19.0.0", "18.1.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"17.0.2", "18.1.0", "18.2.0", "18.3.1", "19.0.0"}, nil).
		Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "react", "18.3.1").Return(nil, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.False(t, res.Unsatisfiable())
	assert.Equal(t, map[string]string{"react": "18.3.1"}, res.Chosen)
	assert.Equal(t, 2, res.Iterations)

	i, ok := g.Lookup("react")
	require.True(t, ok)
	assert.Equal(t, "18.3.1", g.Node(i).Version)
}

func TestResolver_Resolve_MinimalPreference(t *testing.T) {
	f := newFixture(t)
	g := sharedDep("^18.0.0", ">=18.2.0 <19.0.0", "18.1.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"17.0.2", "18.1.0", "18.2.0", "18.3.1", "19.0.0"}, nil).
		Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "react", "18.2.0").Return(nil, nil)

	in := f.input(g)
	in.Config.Preference = domain.PreferMinimal

	res, err := f.res.Resolve(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, map[string]string{"react": "18.2.0"}, res.Chosen)
}

func TestResolver_Resolve_RangeIntersection(t *testing.T) {
	f := newFixture(t)
	g := sharedDep(">=1.0.0 <2.0.0", ">=1.5.0 <1.8.0", "1.2.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"1.0.0", "1.4.9", "1.5.0", "1.7.2", "1.8.0", "1.9.0"}, nil).
		Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "react", "1.7.2").Return(nil, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	// The pick must land inside both ranges, so in [1.5.0, 1.8.0).
	assert.Equal(t, map[string]string{"react": "1.7.2"}, res.Chosen)
	assert.True(t, res.Converged)
}

func TestResolver_Resolve_ImpossibleRanges(t *testing.T) {
	f := newFixture(t)
	g := sharedDep(">=2.0.0", "<1.0.0", "1.0.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"0.9.0", "1.0.0", "2.0.0", "2.1.0"}, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.Empty(t, res.Chosen)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "react", res.Conflicts[0].Package)
	assert.Len(t, res.Conflicts[0].Constraints, 2)
}

func TestResolver_Resolve_DisjointRangesConflict(t *testing.T) {
	f := newFixture(t)
	g := sharedDep("^17.0.0", "^18.0.0", "17.0.2")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"17.0.2", "18.2.0"}, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.True(t, res.Unsatisfiable())
	assert.Empty(t, res.Chosen)
	assert.Equal(t, 1, res.Iterations)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "react", res.Conflicts[0].Package)
	assert.Equal(t, []domain.ConstraintRef{
		{RequiredBy: "app", Range: "^17.0.0"},
		{RequiredBy: "some-lib", Range: "^18.0.0"},
	}, res.Conflicts[0].Constraints)
}

func TestResolver_Resolve_SkipsPrereleases(t *testing.T) {
	f := newFixture(t)
	g := sharedDep(">=18.0.0", "<20.0.0", "18.2.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"18.2.0", "19.0.0-rc.1"}, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, map[string]string{"react": "18.2.0"}, res.Chosen)
}

func TestResolver_Resolve_PeerRepinCascades(t *testing.T) {
	f := newFixture(t)
	g := cascadeGraph()

	f.registry.EXPECT().Versions(gomock.Any(), "form-kit").
		Return([]string{"1.0.0", "1.1.0", "1.2.0"}, nil).
		Times(2)
	f.registry.EXPECT().Versions(gomock.Any(), "schema-core").
		Return([]string{"2.0.0", "2.4.0", "2.5.0", "2.6.0"}, nil).
		Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "form-kit", "1.2.0").
		Return(map[string]string{"schema-core": "^2.5.0"}, nil)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "schema-core", "2.6.0").Return(nil, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, map[string]string{"form-kit": "1.2.0", "schema-core": "2.6.0"}, res.Chosen)

	// The new form-kit version imposed its peer range on schema-core.
	i, ok := g.Lookup("schema-core")
	require.True(t, ok)
	assert.Contains(t, g.Incoming(i), domain.ConstraintRef{RequiredBy: "form-kit", Range: "^2.5.0"})
}

func TestResolver_Resolve_IterationBound(t *testing.T) {
	f := newFixture(t)
	g := cascadeGraph()

	f.registry.EXPECT().Versions(gomock.Any(), "form-kit").
		Return([]string{"1.0.0", "1.1.0", "1.2.0"}, nil)
	f.registry.EXPECT().Versions(gomock.Any(), "schema-core").
		Return([]string{"2.0.0", "2.4.0", "2.5.0", "2.6.0"}, nil)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "form-kit", "1.2.0").
		Return(map[string]string{"schema-core": "^2.5.0"}, nil)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "schema-core", "2.6.0").Return(nil, nil)

	in := f.input(g)
	in.Config.MaxIterations = 1

	res, err := f.res.Resolve(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.True(t, res.Unsatisfiable())
	assert.Equal(t, 1, res.Iterations)
}

// cascadeGraph has two multiply-constrained packages where repinning the
// first tightens the constraints on the second.
func cascadeGraph() *domain.DependencyGraph {
	g := domain.NewDependencyGraph()
	app := g.AddNode("app", "1.0.0")
	lib := g.AddNode("shared-config", "3.0.0")
	formKit := g.AddNode("form-kit", "1.0.0")
	schemaCore := g.AddNode("schema-core", "2.0.0")
	g.AddEdge(app, formKit, "^1.0.0")
	g.AddEdge(lib, formKit, "^1.1.0")
	g.AddEdge(app, schemaCore, "^2.0.0")
	g.AddEdge(lib, schemaCore, ">=2.0.0")
	return g
}

func TestResolver_Resolve_RegistryFailureFallsBack(t *testing.T) {
	t.Run("current version satisfies", func(t *testing.T) {
		f := newFixture(t)
		g := sharedDep("^18.0.0", ">=18.0.0", "18.2.0")

		f.registry.EXPECT().Versions(gomock.Any(), "react").
			Return(nil, domain.ErrRegistryUnavailable)

		res, err := f.res.Resolve(context.Background(), f.input(g))
		require.NoError(t, err)

		assert.True(t, res.Converged)
		assert.False(t, res.Unsatisfiable())
		assert.Equal(t, map[string]string{"react": "18.2.0"}, res.Chosen)
	})

	t.Run("current version violates a range", func(t *testing.T) {
		f := newFixture(t)
		g := sharedDep("^18.0.0", "^17.0.0", "18.2.0")

		f.registry.EXPECT().Versions(gomock.Any(), "react").
			Return(nil, domain.ErrRegistryUnavailable)

		res, err := f.res.Resolve(context.Background(), f.input(g))
		require.NoError(t, err)

		assert.True(t, res.Unsatisfiable())
		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, "react", res.Conflicts[0].Package)
	})
}

func TestResolver_Resolve_NilRegistryVerifiesCurrent(t *testing.T) {
	f := newFixture(t)
	g := sharedDep("^18.0.0", ">=18.2.0", "18.2.0")

	res, err := f.res.Resolve(context.Background(), resolver.Input{
		Graph:  g,
		Config: domain.DefaultConfig().Resolver,
	})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, map[string]string{"react": "18.2.0"}, res.Chosen)
}

func TestResolver_Resolve_UnparsableRangeIgnored(t *testing.T) {
	f := newFixture(t)
	g := sharedDep("git+https://github.com/facebook/react.git", "^18.0.0", "18.1.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"18.1.0", "18.2.0"}, nil).
		Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "react", "18.2.0").Return(nil, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, map[string]string{"react": "18.2.0"}, res.Chosen)
}

func TestResolver_Resolve_WorkspaceRangeNormalized(t *testing.T) {
	f := newFixture(t)
	g := sharedDep("workspace:^18.0.0", "^18.0.0", "18.2.0")

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"18.2.0", "18.3.0"}, nil).
		Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "react", "18.3.0").Return(nil, nil)

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"react": "18.3.0"}, res.Chosen)
}

func TestResolver_Resolve_SingleDependentUntouched(t *testing.T) {
	f := newFixture(t)

	g := domain.NewDependencyGraph()
	app := g.AddNode("app", "1.0.0")
	g.AddEdge(app, g.AddNode("dayjs", "1.11.10"), "^1.11.0")

	res, err := f.res.Resolve(context.Background(), f.input(g))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Empty(t, res.Chosen)
	assert.Equal(t, 1, res.Iterations)
}

func TestResolver_Resolve_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.res.Resolve(ctx, f.input(sharedDep("^18.0.0", "^18.0.0", "18.2.0")))

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Iterations)
}

func TestBuildGraph(t *testing.T) {
	manifest := domain.Manifest{
		Name:            "web-app",
		Version:         "0.1.0",
		Dependencies:    map[string]string{"react": "^18.2.0"},
		DevDependencies: map[string]string{"typescript": "^5.3.0"},
	}
	locked := []domain.LockedPackage{
		{Name: "react", Version: "18.2.0", Dependencies: map[string]string{"loose-envify": "^1.1.0"}},
		{Name: "react-dom", Version: "18.2.0", PeerDependencies: map[string]string{"react": "^18.2.0"}},
		{Name: "scheduler", Version: "0.23.0", Nested: true},
	}
	installed := []domain.InstalledPackage{
		{Name: "react-dom", Version: "18.2.0", PeerDependencies: map[string]string{"react": "^18.0.0"}},
		{Name: "use-sync-external-store", Version: "1.2.0", PeerDependencies: map[string]string{"react": "^16.8.0 || ^17.0.0 || ^18.0.0"}},
	}

	g := resolver.BuildGraph(manifest, locked, installed)

	rootIdx, ok := g.Lookup("web-app")
	require.True(t, ok)
	assert.Equal(t, "0.1.0", g.Node(rootIdx).Version)

	// Nested lockfile entries are invisible to hoisting and stay out.
	_, ok = g.Lookup("scheduler")
	assert.False(t, ok)

	// Constraints come from the manifest, the lockfile, and installed
	// packages the lockfile does not cover. The installed react-dom copy is
	// already represented by its lockfile entry.
	reactIdx, ok := g.Lookup("react")
	require.True(t, ok)
	assert.Equal(t, "18.2.0", g.Node(reactIdx).Version)
	assert.Equal(t, []domain.ConstraintRef{
		{RequiredBy: "web-app", Range: "^18.2.0"},
		{RequiredBy: "react-dom", Range: "^18.2.0"},
		{RequiredBy: "use-sync-external-store", Range: "^16.8.0 || ^17.0.0 || ^18.0.0"},
	}, g.Incoming(reactIdx))

	tsIdx, ok := g.Lookup("typescript")
	require.True(t, ok)
	assert.Equal(t, "", g.Node(tsIdx).Version)

	_, ok = g.Lookup("loose-envify")
	assert.True(t, ok)
}

func TestBuildGraph_UnnamedManifest(t *testing.T) {
	g := resolver.BuildGraph(domain.Manifest{
		Dependencies: map[string]string{"react": "^18.0.0"},
	}, nil, nil)

	_, ok := g.Lookup("root")
	require.True(t, ok)

	reactIdx, ok := g.Lookup("react")
	require.True(t, ok)
	assert.Equal(t, []domain.ConstraintRef{
		{RequiredBy: "root", Range: "^18.0.0"},
	}, g.Incoming(reactIdx))
}
