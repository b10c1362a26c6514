package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/law-makers/tablecrawl/internal/config"
	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/driver/drivertest"
	"github.com/law-makers/tablecrawl/internal/engine"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.PageDelay = 0
	cfg.FilterDelay = 0
	cfg.KeyColumn = "id"
	return cfg
}

func TestPipeline_EndToEnd(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close(context.Background())

	p := drivertest.NewPage("P", "A", "B")
	p.Primary["P"] = true
	p.Tables[drivertest.Key("P", "A")] = drivertest.Table{
		Headers: []string{"id", "name"},
		Pages:   [][]models.Row{{{"1", "x"}}, {{"2", "y"}}},
	}
	p.Tables[drivertest.Key("P", "B")] = drivertest.Table{
		Headers: []string{"id", "name"},
		Pages:   [][]models.Row{{{"2", "y"}}},
	}

	filters, runner, err := a.Pipeline(p)
	require.NoError(t, err)

	opts, err := filters.Discover(context.Background())
	require.NoError(t, err)
	primary, err := engine.Resolve("1", opts)
	require.NoError(t, err)
	secondary, err := engine.Resolve("2,3", opts)
	require.NoError(t, err)

	acc, err := runner.Run(context.Background(), primary, secondary)
	require.NoError(t, err)
	assert.Len(t, acc.Raw, 3)
	assert.Len(t, acc.Kept, 2)

	a.Config.OutputDir = t.TempDir()
	files, err := a.Exporter(nil).Export(context.Background(), acc)
	require.NoError(t, err)
	assert.Contains(t, files.Raw, "export_raw_")
	assert.FileExists(t, a.Locate(files.Dedup))
}

func TestExporter_Stdout(t *testing.T) {
	cfg := testConfig()
	cfg.OutputDir = config.StdoutDir
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, a.ToStdout())

	d, err := dedup.New("id", dedup.DefaultDelimiter)
	require.NoError(t, err)
	acc := dedup.NewAccumulator(d)
	acc.Add([]string{"id", "name"}, []models.Row{{"1", "x"}, {"1", "x"}})

	var stdout bytes.Buffer
	files, err := a.Exporter(&stdout).Export(context.Background(), acc)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,x\n1,x\nid,name\n1,x\n", stdout.String())
	assert.Equal(t, files.Raw+" (stdout)", a.Locate(files.Raw))
}

func TestUptime(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Positive(t, a.Uptime())
	assert.NoError(t, a.Close(context.Background()))
}

func TestPipeline_InvalidDelimiter(t *testing.T) {
	cfg := testConfig()
	cfg.KeyDelimiter = "7"
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	_, _, err = a.Pipeline(drivertest.NewPage())
	assert.Error(t, err)
}

func TestSettler_LoadingMode(t *testing.T) {
	cfg := testConfig()
	cfg.SettleMode = config.SettleLoading
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	_, runner, err := a.Pipeline(drivertest.NewPage())
	require.NoError(t, err)
	_, ok := runner.Settler.(engine.LoadingSettler)
	assert.True(t, ok)
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := testConfig()
	cfg.JSONLog = true
	cfg.LogLevel = "info"
	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
