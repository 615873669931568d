package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/litemigrate/internal/backend"
	"github.com/roach88/litemigrate/internal/migration"
	"github.com/roach88/litemigrate/internal/testutil"
)

// trackingConnector records every connection handed out so tests can verify
// that operations release them.
type trackingConnector struct {
	inner *backend.Connector
	conns []*backend.Conn
}

func (c *trackingConnector) Connect(ctx context.Context) (*backend.Conn, error) {
	conn, err := c.inner.Connect(ctx)
	if err == nil {
		c.conns = append(c.conns, conn)
	}
	return conn, err
}

func (c *trackingConnector) assertAllClosed(t *testing.T) {
	t.Helper()
	for i, conn := range c.conns {
		assert.True(t, conn.Closed(), "connection %d was not closed", i)
	}
}

func setupTestEngine(t *testing.T, opts ...Option) (*Engine, *trackingConnector) {
	t.Helper()
	tc := &trackingConnector{inner: testutil.SQLiteConnector(t)}
	defaults := []Option{
		WithClock(testutil.NewFixedClock().Now),
		WithRunIDs(testutil.NewFixedRunIDs("run-1")),
	}
	e := New(tc, append(defaults, opts...)...)
	return e, tc
}

func setupInitializedEngine(t *testing.T, opts ...Option) (*Engine, *trackingConnector) {
	t.Helper()
	e, tc := setupTestEngine(t, opts...)
	created, err := e.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, created)
	return e, tc
}

// playerMigrations is the two-step change-set used throughout the tests.
func playerMigrations() []migration.Migration {
	return []migration.Migration{
		{
			Version: 2,
			Up:      "CREATE TABLE player(name VARCHAR NOT NULL, score INTEGER)",
			Down:    "DROP TABLE player",
		},
		{
			Version: 3,
			Up:      "INSERT INTO player(name, score) VALUES('User', 10)",
			Down:    "DELETE FROM player WHERE name = 'User'",
		},
	}
}

// chainMigrations returns versions from..to, each creating table t<version>.
func chainMigrations(from, to int64) []migration.Migration {
	var ms []migration.Migration
	for v := from; v <= to; v++ {
		ms = append(ms, migration.Migration{
			Version: v,
			Up:      fmt.Sprintf("CREATE TABLE t%d(id INTEGER)", v),
			Down:    fmt.Sprintf("DROP TABLE t%d", v),
		})
	}
	return ms
}

func ledgerVersions(t *testing.T, tc *trackingConnector) []int64 {
	t.Helper()
	ctx := context.Background()
	conn, err := tc.inner.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, "SELECT version FROM migration ORDER BY version")
	require.NoError(t, err)
	defer rows.Close()

	versions := []int64{}
	for rows.Next() {
		var v int64
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, rows.Err())
	return versions
}

func tableExists(t *testing.T, tc *trackingConnector, name string) bool {
	t.Helper()
	ctx := context.Background()
	conn, err := tc.inner.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, conn.Dialect().TableExistsQuery(), name).Scan(&count))
	return count > 0
}

func playerCount(t *testing.T, tc *trackingConnector) int {
	t.Helper()
	ctx := context.Background()
	conn, err := tc.inner.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM player").Scan(&count))
	return count
}

func TestNew_Defaults(t *testing.T) {
	e := New(testutil.SQLiteConnector(t))

	assert.Equal(t, DefaultBaseline, e.Baseline())
	assert.Equal(t, "migration", e.table)
	assert.NotNil(t, e.logger)
	assert.False(t, e.now().IsZero())
}

func TestInitialize_CreatesBaseline(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	assert.Equal(t, []int64{1}, ledgerVersions(t, tc))

	statuses, err := e.Show(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Applied)
	assert.Equal(t, int64(1), statuses[0].Version)
	require.NotNil(t, statuses[0].Date)
	assert.True(t, testutil.Epoch.Equal(*statuses[0].Date))
}

func TestInitialize_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)

	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	created, err := e.Initialize(ctx)
	require.NoError(t, err, "second initialize must not fail")
	assert.False(t, created)
	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc), "existing rows must survive")
	tc.assertAllClosed(t)
}

func TestInitialize_SeedsEmptyLedger(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)

	conn, err := tc.inner.Connect(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "DELETE FROM migration")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = e.Show(ctx, playerMigrations())
	require.Error(t, err)
	assert.True(t, migration.IsConfigurationError(err))

	created, err := e.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []int64{1}, ledgerVersions(t, tc))

	res, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, res.Applied)
	tc.assertAllClosed(t)
}

func TestInitialize_CustomBaseline(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t, WithBaseline(0))

	assert.Equal(t, []int64{0}, ledgerVersions(t, tc))

	res, err := e.Apply(ctx, chainMigrations(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, res.Applied)

	_, err = e.Reverse(ctx, 0, chainMigrations(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, ledgerVersions(t, tc))
}

func TestInitialize_CustomTable(t *testing.T) {
	e, tc := setupInitializedEngine(t, WithTable("schema_ledger"))

	assert.True(t, tableExists(t, tc, "schema_ledger"))
	assert.False(t, tableExists(t, tc, "migration"))

	_, err := e.Apply(context.Background(), playerMigrations())
	require.NoError(t, err)
}

func TestInitialize_InvalidTable(t *testing.T) {
	e, tc := setupTestEngine(t, WithTable("bad name"))

	_, err := e.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, migration.IsConfigurationError(err))
	tc.assertAllClosed(t)
}

func TestApply_Scenario(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)

	res, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, res.Applied)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, int64(3), res.Current)

	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc))
	assert.Equal(t, 1, playerCount(t, tc))

	statuses, err := e.Show(ctx, playerMigrations())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for i, st := range statuses {
		assert.True(t, st.Applied)
		assert.Equal(t, int64(i+1), st.Version)
		assert.NotNil(t, st.Date)
	}
}

func TestApply_SkipsAlreadyApplied(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)

	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	res, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err, "already-applied versions are not errors")
	assert.Empty(t, res.Applied)
	assert.Equal(t, []int64{2, 3}, res.Skipped)
	assert.Equal(t, 1, playerCount(t, tc), "forward statements must not rerun")
}

func TestApply_UnsortedInput(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	ms := chainMigrations(2, 4)
	ms[0], ms[2] = ms[2], ms[0]

	res, err := e.Apply(context.Background(), ms)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, res.Applied)
	assert.Equal(t, []int64{1, 2, 3, 4}, ledgerVersions(t, tc))
}

func TestApply_GapAborts(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	ms := append(chainMigrations(2, 2), chainMigrations(4, 5)...)

	res, err := e.Apply(context.Background(), ms)
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
	assert.Contains(t, err.Error(), "missing migration before 4")

	require.NotNil(t, res)
	assert.Equal(t, []int64{2}, res.Applied)
	assert.Equal(t, int64(2), res.Current)
	assert.Equal(t, []int64{1, 2}, ledgerVersions(t, tc))
	assert.False(t, tableExists(t, tc, "t4"), "nothing past the gap may run")
	assert.False(t, tableExists(t, tc, "t5"))
	tc.assertAllClosed(t)
}

func TestApply_GapAtStart(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	_, err := e.Apply(context.Background(), chainMigrations(3, 3))
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
	assert.Equal(t, []int64{1}, ledgerVersions(t, tc))
}

func TestApply_ExecutionFailureKeepsEarlierSteps(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	ms := chainMigrations(2, 4)
	ms[1].Up = "CRATE TABLE t3(id INTEGER)"

	res, err := e.Apply(context.Background(), ms)
	require.Error(t, err)
	assert.True(t, migration.IsExecutionError(err))

	var me *migration.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, int64(3), me.Version)
	assert.NotNil(t, me.Unwrap(), "backend error must be wrapped")

	assert.Equal(t, []int64{2}, res.Applied)
	assert.Equal(t, []int64{1, 2}, ledgerVersions(t, tc), "no automatic rollback of earlier steps")
	assert.True(t, tableExists(t, tc, "t2"))
	assert.False(t, tableExists(t, tc, "t4"))
	tc.assertAllClosed(t)
}

func TestApply_FailedStepLeavesNoLedgerRow(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	ms := []migration.Migration{{
		Version: 2,
		Up:      "CREATE TABLE t2(id INTEGER); INSERT INTO missing VALUES(1)",
		Down:    "DROP TABLE t2",
	}}

	_, err := e.Apply(context.Background(), ms)
	require.Error(t, err)
	assert.Equal(t, []int64{1}, ledgerVersions(t, tc))
}

func TestApply_EmptyStatementRecordsVersion(t *testing.T) {
	e, tc := setupInitializedEngine(t)

	res, err := e.Apply(context.Background(), []migration.Migration{{Version: 2}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, res.Applied)
	assert.Equal(t, []int64{1, 2}, ledgerVersions(t, tc))
}

func TestApply_InvalidChangeSet(t *testing.T) {
	e, tc := setupInitializedEngine(t)
	opened := len(tc.conns)

	ms := append(chainMigrations(2, 3), chainMigrations(3, 3)...)

	_, err := e.Apply(context.Background(), ms)
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
	assert.Len(t, tc.conns, opened, "validation happens before connecting")
}

func TestApply_WithoutInitialize(t *testing.T) {
	e, tc := setupTestEngine(t)

	_, err := e.Apply(context.Background(), playerMigrations())
	require.Error(t, err)
	assert.True(t, migration.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "run init first")
	tc.assertAllClosed(t)
}

func TestReverse_Scenario(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	res, err := e.Reverse(ctx, 1, playerMigrations())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, res.Reversed)
	assert.Equal(t, int64(3), res.From)
	assert.Equal(t, int64(1), res.Current)
	assert.False(t, res.DryRun)

	assert.Equal(t, []int64{1}, ledgerVersions(t, tc))
	assert.False(t, tableExists(t, tc, "player"))
}

func TestReverse_TargetStaysApplied(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	res, err := e.Reverse(ctx, 2, playerMigrations())
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, res.Reversed)
	assert.Equal(t, int64(2), res.Current)

	assert.Equal(t, []int64{1, 2}, ledgerVersions(t, tc))
	assert.True(t, tableExists(t, tc, "player"))
	assert.Equal(t, 0, playerCount(t, tc))
}

func TestReverse_ToCurrentIsNoop(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	res, err := e.Reverse(ctx, 3, playerMigrations())
	require.NoError(t, err)
	assert.Empty(t, res.Reversed)
	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc))
}

func TestReverse_BeyondCurrentRejected(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	_, err = e.Reverse(ctx, 5, playerMigrations())
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc), "ledger must be unmodified")
	assert.Equal(t, 1, playerCount(t, tc))
	tc.assertAllClosed(t)
}

func TestReverse_BelowBaselineRejected(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	_, err = e.Reverse(ctx, 0, playerMigrations())
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc))
}

func TestReverse_IgnoresUnappliedMigrations(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, chainMigrations(2, 3))
	require.NoError(t, err)

	// Version 4 was never applied; its backward statement would fail.
	ms := chainMigrations(2, 4)

	res, err := e.Reverse(ctx, 1, ms)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, res.Reversed)
	assert.Equal(t, []int64{1}, ledgerVersions(t, tc))
}

func TestReverse_MissingMigrationRejectedBeforeMutation(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, chainMigrations(2, 3))
	require.NoError(t, err)

	_, err = e.Reverse(ctx, 1, chainMigrations(2, 2))
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc))
	assert.True(t, tableExists(t, tc, "t3"))
}

func TestReverse_ExecutionFailureKeepsEarlierReversals(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	ms := chainMigrations(2, 4)
	_, err := e.Apply(ctx, ms)
	require.NoError(t, err)

	ms[1].Down = "DROP TABLE no_such_table"

	res, err := e.Reverse(ctx, 1, ms)
	require.Error(t, err)
	assert.True(t, migration.IsExecutionError(err))

	var me *migration.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, int64(3), me.Version)

	require.NotNil(t, res)
	assert.Equal(t, []int64{4}, res.Reversed)
	assert.Equal(t, int64(3), res.Current)
	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc))
	assert.False(t, tableExists(t, tc, "t4"))
	assert.True(t, tableExists(t, tc, "t3"))
	tc.assertAllClosed(t)
}

func TestDryRunReverse_Scenario(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	res, err := e.DryRunReverse(ctx, 2, playerMigrations())
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, []int64{3}, res.Reversed)
	assert.Equal(t, int64(3), res.Current)

	assert.Equal(t, []int64{1, 2, 3}, ledgerVersions(t, tc), "dry run must not alter the ledger")
	assert.Equal(t, 1, playerCount(t, tc), "dry run must not execute backward statements")
}

func TestDryRunReverse_BeyondCurrentRejected(t *testing.T) {
	ctx := context.Background()
	e, _ := setupInitializedEngine(t)
	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	_, err = e.DryRunReverse(ctx, 4, playerMigrations())
	require.Error(t, err)
	assert.True(t, migration.IsSequenceError(err))
}

func TestDryRunAgreesWithReverse(t *testing.T) {
	const top = 6

	for target := int64(1); target <= top; target++ {
		t.Run(fmt.Sprintf("target_%d", target), func(t *testing.T) {
			ctx := context.Background()
			e, tc := setupInitializedEngine(t)
			ms := chainMigrations(2, top)
			_, err := e.Apply(ctx, ms)
			require.NoError(t, err)

			preview, err := e.DryRunReverse(ctx, target, ms)
			require.NoError(t, err)

			before := ledgerVersions(t, tc)
			res, err := e.Reverse(ctx, target, ms)
			require.NoError(t, err)
			after := ledgerVersions(t, tc)

			assert.Equal(t, preview.Reversed, res.Reversed)
			assert.ElementsMatch(t, preview.Reversed, difference(before, after))
		})
	}
}

func TestApplyReverseInverse(t *testing.T) {
	const top = 5

	for target := int64(1); target < top; target++ {
		t.Run(fmt.Sprintf("target_%d", target), func(t *testing.T) {
			ctx := context.Background()

			// Apply 2..top then reverse to target.
			e, tc := setupInitializedEngine(t)
			ms := chainMigrations(2, top)
			_, err := e.Apply(ctx, ms)
			require.NoError(t, err)
			_, err = e.Reverse(ctx, target, ms)
			require.NoError(t, err)

			// Only ever apply 2..target.
			ref, refTC := setupInitializedEngine(t)
			_, err = ref.Apply(ctx, chainMigrations(2, target))
			require.NoError(t, err)

			assert.Equal(t, ledgerVersions(t, refTC), ledgerVersions(t, tc))
			for v := int64(2); v <= top; v++ {
				name := fmt.Sprintf("t%d", v)
				assert.Equal(t, tableExists(t, refTC, name), tableExists(t, tc, name), name)
			}
		})
	}
}

func TestShow_ReportsNotApplied(t *testing.T) {
	e, _ := setupInitializedEngine(t)

	statuses, err := e.Show(context.Background(), playerMigrations())
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.True(t, statuses[0].Applied)
	assert.Equal(t, int64(1), statuses[0].Version)
	assert.NotNil(t, statuses[0].Date)

	for i, want := range []int64{2, 3} {
		st := statuses[i+1]
		assert.False(t, st.Applied)
		assert.Equal(t, want, st.Version)
		assert.Nil(t, st.Date)
	}
}

func TestShow_PartialState(t *testing.T) {
	ctx := context.Background()
	e, _ := setupInitializedEngine(t)
	_, err := e.Apply(ctx, chainMigrations(2, 3))
	require.NoError(t, err)

	statuses, err := e.Show(ctx, chainMigrations(2, 5))
	require.NoError(t, err)

	var applied, pending []int64
	for _, st := range statuses {
		if st.Applied {
			applied = append(applied, st.Version)
		} else {
			pending = append(pending, st.Version)
		}
	}
	assert.Equal(t, []int64{1, 2, 3}, applied)
	assert.Equal(t, []int64{4, 5}, pending)
}

func TestShow_WithoutInitialize(t *testing.T) {
	e, tc := setupTestEngine(t)

	_, err := e.Show(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, migration.IsConfigurationError(err))
	tc.assertAllClosed(t)
}

func TestOperations_ReleaseConnections(t *testing.T) {
	ctx := context.Background()
	e, tc := setupInitializedEngine(t)
	ms := playerMigrations()

	_, _ = e.Apply(ctx, ms)
	_, _ = e.Show(ctx, ms)
	_, _ = e.DryRunReverse(ctx, 2, ms)
	_, _ = e.DryRunReverse(ctx, 9, ms)
	_, _ = e.Reverse(ctx, 9, ms)
	_, _ = e.Reverse(ctx, 1, ms)
	_, _ = e.Initialize(ctx)

	assert.Len(t, tc.conns, 8)
	tc.assertAllClosed(t)
}

func TestOperations_BackendUnavailable(t *testing.T) {
	c, err := backend.New(backend.Descriptor{Kind: backend.KindSQLite, Path: "/nonexistent/dir/test.db"})
	require.NoError(t, err)
	e := New(c)
	ctx := context.Background()

	_, err = e.Initialize(ctx)
	assert.True(t, migration.IsConnectionError(err))
	_, err = e.Apply(ctx, playerMigrations())
	assert.True(t, migration.IsConnectionError(err))
	_, err = e.Reverse(ctx, 1, playerMigrations())
	assert.True(t, migration.IsConnectionError(err))
	_, err = e.DryRunReverse(ctx, 1, playerMigrations())
	assert.True(t, migration.IsConnectionError(err))
	_, err = e.Show(ctx, playerMigrations())
	assert.True(t, migration.IsConnectionError(err))
}

func TestLogging_InjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e, _ := setupInitializedEngine(t, WithLogger(logger))
	ctx := context.Background()

	_, err := e.Apply(ctx, playerMigrations())
	require.NoError(t, err)
	_, err = e.Apply(ctx, playerMigrations())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"op":"apply"`)
	assert.Contains(t, out, "already applied, skipping")
	assert.Contains(t, out, "ledger initialized")
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	a, b := gen.Generate(), gen.Generate()
	assert.NotEqual(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

// difference returns the elements of a that are not in b.
func difference(a, b []int64) []int64 {
	in := make(map[int64]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	out := []int64{}
	for _, v := range a {
		if !in[v] {
			out = append(out, v)
		}
	}
	return out
}
