package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/hale/internal/adapters/telemetry"
	"go.trai.ch/hale/internal/app"
	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/hale/internal/core/ports/mocks"
	"go.trai.ch/hale/internal/engine/doctor"
	"go.trai.ch/hale/internal/engine/planner"
	"go.trai.ch/hale/internal/engine/repair"
	"go.trai.ch/hale/internal/engine/resolver"
)

const projectRoot = "/proj"

type fixture struct {
	prober   *mocks.MockProber
	runner   *mocks.MockCommandRunner
	store    *mocks.MockLockStore
	locker   *mocks.MockLocker
	registry *mocks.MockRegistry
	config   *mocks.MockConfigLoader
	fs       billy.Filesystem
	app      *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	f := &fixture{
		prober:   mocks.NewMockProber(ctrl),
		runner:   mocks.NewMockCommandRunner(ctrl),
		store:    mocks.NewMockLockStore(ctrl),
		locker:   mocks.NewMockLocker(ctrl),
		registry: mocks.NewMockRegistry(ctrl),
		config:   mocks.NewMockConfigLoader(ctrl),
		fs:       memfs.New(),
	}
	f.store.EXPECT().Path().Return(projectRoot + "/env.lock").AnyTimes()

	tel := telemetry.NewNoOp()
	f.app = app.New(app.Deps{
		Logger:     log,
		Telemetry:  tel,
		Prober:     f.prober,
		Runner:     f.runner,
		Config:     f.config,
		Doctor:     doctor.New(log, f.runner, f.fs),
		Planner:    planner.New(),
		Repairer:   repair.New(f.runner, tel, log),
		Resolver:   resolver.New(log),
		Stores:     func(string) ports.LockStore { return f.store },
		Lockers:    func(string) ports.Locker { return f.locker },
		Registries: func(domain.RegistryConfig) ports.Registry { return f.registry },
	})
	return f
}

func fingerprint(runtime, pmName, pmVersion string) domain.EnvironmentFingerprint {
	return domain.EnvironmentFingerprint{
		RuntimeVersion: runtime,
		PackageManager: domain.PackageManager{Name: pmName, Version: pmVersion},
	}
}

func TestInit_RecordsEnvironment(t *testing.T) {
	f := newFixture(t)
	fp := fingerprint("20.11.0", "pnpm", "8.15.1")

	f.store.EXPECT().Read().Return(domain.LockDocument{}, domain.ErrLockNotFound)
	f.locker.EXPECT().Acquire().Return(nil)
	f.prober.EXPECT().CaptureFull(gomock.Any(), projectRoot).Return(fp, nil)

	var written domain.LockDocument
	f.store.EXPECT().Write(gomock.Any()).DoAndReturn(func(doc domain.LockDocument) error {
		written = doc
		return nil
	})
	f.locker.EXPECT().Release().Return(nil)

	doc, err := f.app.Init(context.Background(), projectRoot, false)
	require.NoError(t, err)
	assert.Equal(t, fp, doc.Fingerprint)
	assert.Equal(t, "hale@dev", doc.GeneratedBy)
	assert.Equal(t, doc, written)
}

func TestInit_RefusesExistingLock(t *testing.T) {
	tests := []struct {
		name    string
		readErr error
	}{
		{name: "readable document"},
		{name: "malformed document", readErr: domain.ErrLockMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.EXPECT().Read().Return(domain.LockDocument{}, tt.readErr)

			_, err := f.app.Init(context.Background(), projectRoot, false)
			require.ErrorIs(t, err, domain.ErrLockExists)
		})
	}
}

func TestInit_ForceOverwrites(t *testing.T) {
	f := newFixture(t)
	fp := fingerprint("20.11.0", "pnpm", "8.15.1")

	f.locker.EXPECT().Acquire().Return(nil)
	f.prober.EXPECT().CaptureFull(gomock.Any(), projectRoot).Return(fp, nil)
	f.store.EXPECT().Write(gomock.Any()).Return(nil)
	f.locker.EXPECT().Release().Return(nil)

	_, err := f.app.Init(context.Background(), projectRoot, true)
	require.NoError(t, err)
}

func TestLock_RefreshesExistingDocument(t *testing.T) {
	f := newFixture(t)
	existing := domain.NewLockDocument(fingerprint("18.19.0", "npm", "10.2.4"), "hale@0.1.0")
	fresh := fingerprint("20.11.0", "pnpm", "8.15.1")

	f.locker.EXPECT().Acquire().Return(nil)
	f.store.EXPECT().Read().Return(existing, nil)
	f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fresh, nil)

	var written domain.LockDocument
	f.store.EXPECT().Write(gomock.Any()).DoAndReturn(func(doc domain.LockDocument) error {
		written = doc
		return nil
	})
	f.locker.EXPECT().Release().Return(nil)

	doc, err := f.app.Lock(context.Background(), projectRoot, false)
	require.NoError(t, err)
	assert.Equal(t, fresh, doc.Fingerprint)
	assert.Equal(t, existing.GeneratedAt, written.GeneratedAt)
	assert.Equal(t, "hale@dev", written.GeneratedBy)
}

func TestLock_FullRecapture(t *testing.T) {
	f := newFixture(t)
	fp := fingerprint("20.11.0", "pnpm", "8.15.1")
	fp.NodeModulesHash = "xxh64:deadbeef"

	f.locker.EXPECT().Acquire().Return(nil)
	f.store.EXPECT().Read().Return(domain.LockDocument{}, domain.ErrLockNotFound)
	f.prober.EXPECT().CaptureFull(gomock.Any(), projectRoot).Return(fp, nil)
	f.store.EXPECT().Write(gomock.Any()).Return(nil)
	f.locker.EXPECT().Release().Return(nil)

	doc, err := f.app.Lock(context.Background(), projectRoot, true)
	require.NoError(t, err)
	assert.Equal(t, fp, doc.Fingerprint)
}

func TestLock_HeldByAnotherProcess(t *testing.T) {
	f := newFixture(t)
	f.locker.EXPECT().Acquire().Return(domain.ErrLockHeld)

	_, err := f.app.Lock(context.Background(), projectRoot, false)
	require.ErrorIs(t, err, domain.ErrLockHeld)
}

func TestVerify_ReportsDrift(t *testing.T) {
	f := newFixture(t)
	stored := domain.NewLockDocument(fingerprint("20.11.0", "pnpm", "8.15.1"), "hale@dev")

	f.store.EXPECT().Read().Return(stored, nil)
	f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fingerprint("20.11.0", "pnpm", "8.6.0"), nil)

	discrepancies, err := f.app.Verify(context.Background(), projectRoot)
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, domain.FieldPackageManagerVer, discrepancies[0].FieldPath)
}

func TestVerify_NoLockDocument(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Read().Return(domain.LockDocument{}, domain.ErrLockNotFound)

	_, err := f.app.Verify(context.Background(), projectRoot)
	require.ErrorIs(t, err, domain.ErrLockNotFound)
}

func TestStatus(t *testing.T) {
	t.Run("locked project with drift", func(t *testing.T) {
		f := newFixture(t)
		stored := domain.NewLockDocument(fingerprint("20.11.0", "pnpm", "8.15.1"), "hale@dev")
		f.store.EXPECT().Read().Return(stored, nil)
		f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fingerprint("18.19.0", "pnpm", "8.15.1"), nil)

		st, err := f.app.Status(context.Background(), projectRoot)
		require.NoError(t, err)
		assert.Equal(t, projectRoot+"/env.lock", st.LockPath)
		require.NotNil(t, st.Document)
		require.NotNil(t, st.Live)
		require.Len(t, st.Discrepancies, 1)
		assert.Equal(t, domain.FieldRuntimeVersion, st.Discrepancies[0].FieldPath)
	})

	t.Run("unlocked project", func(t *testing.T) {
		f := newFixture(t)
		f.store.EXPECT().Read().Return(domain.LockDocument{}, domain.ErrLockNotFound)
		f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fingerprint("20.11.0", "npm", "10.2.4"), nil)

		st, err := f.app.Status(context.Background(), projectRoot)
		require.NoError(t, err)
		assert.Nil(t, st.Document)
		require.NotNil(t, st.Live)
		assert.Empty(t, st.Discrepancies)
	})

	t.Run("probe failure", func(t *testing.T) {
		f := newFixture(t)
		stored := domain.NewLockDocument(fingerprint("20.11.0", "pnpm", "8.15.1"), "hale@dev")
		f.store.EXPECT().Read().Return(stored, nil)
		f.prober.EXPECT().Capture(gomock.Any(), projectRoot).
			Return(domain.EnvironmentFingerprint{}, domain.ErrProbeNotFound)

		st, err := f.app.Status(context.Background(), projectRoot)
		require.NoError(t, err)
		require.NotNil(t, st.Document)
		assert.Nil(t, st.Live)
		require.ErrorIs(t, st.ProbeErr, domain.ErrProbeNotFound)
	})
}

// driftedProject arranges a project whose only problem is a runtime that
// drifted from 20.11.0 down to 18.19.0.
func (f *fixture) driftedProject(storedReads int) domain.LockDocument {
	stored := domain.NewLockDocument(fingerprint("20.11.0", "npm", "10.2.4"), "hale@0.1.0")

	f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
	f.prober.EXPECT().ReadManifest(projectRoot).Return(domain.Manifest{Name: "web-app", Version: "1.0.0"}, nil)
	f.store.EXPECT().Read().Return(stored, nil).Times(storedReads)
	f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fingerprint("18.19.0", "npm", "10.2.4"), nil)
	f.prober.EXPECT().InstalledPackages(projectRoot).Return(nil, nil)
	f.prober.EXPECT().LockedPackages(projectRoot).Return(nil, nil)
	f.runner.EXPECT().Run(gomock.Any(), projectRoot, []string{"npm", "--version"}).
		Return(ports.RunResult{Stdout: "10.2.4\n"}, nil)
	return stored
}

func TestPlanRepairs_PinsDriftedRuntime(t *testing.T) {
	t.Setenv("VOLTA_HOME", "/opt/volta")
	f := newFixture(t)
	f.driftedProject(1)

	plan, findings, err := f.app.PlanRepairs(context.Background(), projectRoot)
	require.NoError(t, err)

	var drifted bool
	for _, finding := range findings {
		if finding.ID == "drift.runtime_version" {
			drifted = true
			assert.Equal(t, domain.SeverityCritical, finding.Severity)
		}
	}
	assert.True(t, drifted, "expected a runtime drift finding")

	actions := plan.Ordered()
	require.Len(t, actions, 1)
	assert.Equal(t, planner.ActionPinRuntime, actions[0].ID)
	assert.Equal(t, []string{"volta", "pin", "node@20.11.0"}, actions[0].Operation)
}

func TestRepair_AppliesPlanAndRelocks(t *testing.T) {
	t.Setenv("VOLTA_HOME", "/opt/volta")
	f := newFixture(t)
	stored := f.driftedProject(2)
	repaired := fingerprint("20.11.0", "npm", "10.2.4")

	f.locker.EXPECT().Acquire().Return(nil)
	f.runner.EXPECT().Run(gomock.Any(), projectRoot, []string{"volta", "pin", "node@20.11.0"}).
		Return(ports.RunResult{}, nil)
	f.prober.EXPECT().CaptureFull(gomock.Any(), projectRoot).Return(repaired, nil)

	var written domain.LockDocument
	f.store.EXPECT().Write(gomock.Any()).DoAndReturn(func(doc domain.LockDocument) error {
		written = doc
		return nil
	})
	f.locker.EXPECT().Release().Return(nil)

	results, plan, err := f.app.Repair(context.Background(), projectRoot, "")
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Len())
	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeSucceeded, results[0].Outcome)
	assert.Equal(t, repaired, written.Fingerprint)
	assert.Equal(t, stored.GeneratedAt, written.GeneratedAt)
}

func TestRepair_NothingToRepair(t *testing.T) {
	f := newFixture(t)
	stored := domain.NewLockDocument(fingerprint("20.11.0", "npm", "10.2.4"), "hale@0.1.0")

	f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
	f.prober.EXPECT().ReadManifest(projectRoot).Return(domain.Manifest{Name: "web-app"}, nil)
	f.store.EXPECT().Read().Return(stored, nil)
	f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(stored.Fingerprint, nil)
	f.prober.EXPECT().InstalledPackages(projectRoot).Return(nil, nil)
	f.prober.EXPECT().LockedPackages(projectRoot).Return(nil, nil)
	f.runner.EXPECT().Run(gomock.Any(), projectRoot, []string{"npm", "--version"}).
		Return(ports.RunResult{Stdout: "10.2.4\n"}, nil)

	results, plan, err := f.app.Repair(context.Background(), projectRoot, "")
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Len())
	assert.Empty(t, results)
}

func TestResolve_ChoosesSharedVersions(t *testing.T) {
	f := newFixture(t)

	f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
	f.prober.EXPECT().ReadManifest(projectRoot).Return(domain.Manifest{
		Name:         "web-app",
		Version:      "1.0.0",
		Dependencies: map[string]string{"react": "^18.0.0"},
	}, nil)
	f.prober.EXPECT().LockedPackages(projectRoot).Return([]domain.LockedPackage{
		{Name: "react", Version: "18.2.0"},
		{Name: "react-dom", Version: "18.2.0", PeerDependencies: map[string]string{"react": "^18.2.0"}},
	}, nil)
	f.prober.EXPECT().InstalledPackages(projectRoot).Return(nil, nil)

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"18.1.0", "18.2.0", "18.3.1"}, nil).Times(2)
	f.registry.EXPECT().PeerDependencies(gomock.Any(), "react", "18.3.1").
		Return(map[string]string{}, nil)

	res, err := f.app.Resolve(context.Background(), projectRoot)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, "18.3.1", res.Chosen["react"])
	assert.Empty(t, res.Conflicts)
}

func TestResolve_Unsatisfiable(t *testing.T) {
	f := newFixture(t)

	f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
	f.prober.EXPECT().ReadManifest(projectRoot).Return(domain.Manifest{
		Name:         "web-app",
		Version:      "1.0.0",
		Dependencies: map[string]string{"react": "^17.0.0"},
	}, nil)
	f.prober.EXPECT().LockedPackages(projectRoot).Return([]domain.LockedPackage{
		{Name: "react", Version: "17.0.2"},
		{Name: "react-dom", Version: "18.2.0", PeerDependencies: map[string]string{"react": "^18.0.0"}},
	}, nil)
	f.prober.EXPECT().InstalledPackages(projectRoot).Return(nil, nil)

	f.registry.EXPECT().Versions(gomock.Any(), "react").
		Return([]string{"17.0.2", "18.2.0"}, nil)

	res, err := f.app.Resolve(context.Background(), projectRoot)
	require.ErrorIs(t, err, domain.ErrUnsatisfiable)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "react", res.Conflicts[0].Package)
}

func TestVersions(t *testing.T) {
	published := []string{"16.8.0", "17.0.2", "18.2.0", "19.0.0-rc.1"}

	t.Run("newest first without prereleases", func(t *testing.T) {
		f := newFixture(t)
		f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
		f.registry.EXPECT().Versions(gomock.Any(), "react").Return(published, nil)

		got, err := f.app.Versions(context.Background(), projectRoot, "react", "", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"18.2.0", "17.0.2", "16.8.0"}, got)
	})

	t.Run("constraint filter", func(t *testing.T) {
		f := newFixture(t)
		f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
		f.registry.EXPECT().Versions(gomock.Any(), "react").Return(published, nil)

		got, err := f.app.Versions(context.Background(), projectRoot, "react", "^17.0.0", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"17.0.2"}, got)
	})

	t.Run("limit", func(t *testing.T) {
		f := newFixture(t)
		f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)
		f.registry.EXPECT().Versions(gomock.Any(), "react").Return(published, nil)

		got, err := f.app.Versions(context.Background(), projectRoot, "react", "", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"18.2.0"}, got)
	})

	t.Run("invalid constraint", func(t *testing.T) {
		f := newFixture(t)
		f.config.EXPECT().Load(projectRoot).Return(domain.DefaultConfig(), nil)

		_, err := f.app.Versions(context.Background(), projectRoot, "react", "not a range", 0)
		require.Error(t, err)
	})
}

func TestClean(t *testing.T) {
	t.Run("uses the detected package manager", func(t *testing.T) {
		f := newFixture(t)
		f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fingerprint("20.11.0", "pnpm", "8.15.1"), nil)
		f.runner.EXPECT().Run(gomock.Any(), projectRoot, []string{"pnpm", "store", "prune"}).
			Return(ports.RunResult{}, nil)

		require.NoError(t, f.app.Clean(context.Background(), projectRoot))
	})

	t.Run("falls back to npm when probing fails", func(t *testing.T) {
		f := newFixture(t)
		f.prober.EXPECT().Capture(gomock.Any(), projectRoot).
			Return(domain.EnvironmentFingerprint{}, domain.ErrProbeNotFound)
		f.runner.EXPECT().Run(gomock.Any(), projectRoot, []string{"npm", "cache", "clean", "--force"}).
			Return(ports.RunResult{}, nil)

		require.NoError(t, f.app.Clean(context.Background(), projectRoot))
	})

	t.Run("prune failure surfaces", func(t *testing.T) {
		f := newFixture(t)
		f.prober.EXPECT().Capture(gomock.Any(), projectRoot).Return(fingerprint("20.11.0", "yarn", "1.22.0"), nil)
		f.runner.EXPECT().Run(gomock.Any(), projectRoot, []string{"yarn", "cache", "clean"}).
			Return(ports.RunResult{ExitCode: 1}, errors.New("exit status 1"))

		err := f.app.Clean(context.Background(), projectRoot)
		require.ErrorContains(t, err, "cache prune failed")
	})
}
