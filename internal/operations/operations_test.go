package operations

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/config"
	"github.com/rlutes/90.1-cost-effectiveness-analysis/internal/shared/testutil"
)

const officeProto = "HVAC Small Office Proto"

// testConfig points every directory of the default configuration into a
// fresh temporary directory
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = dir
	cfg.Extraction.Buildings = []string{officeProto}
	cfg.Paths.Resolve()
	return cfg
}

func newTestRunner(t *testing.T, cfg *config.Config) (*Runner, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	r, err := NewRunner(cfg, logger, nil)
	require.NoError(t, err)
	return r, handler
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func setCells(t *testing.T, f *excelize.File, sheet string, cells map[string]string) {
	t.Helper()
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
}

// createAnalysisWorkbook builds a one-state workbook with a single-zone
// prototype sheet and a Cost Est Summary holding one lighting column
func createAnalysisWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", config.DefaultStateSheet))
	setCells(t, f, config.DefaultStateSheet, map[string]string{
		"A4": "Texas", "B9": "TX", "F9": "1",
	})

	_, err := f.NewSheet(officeProto)
	require.NoError(t, err)
	setCells(t, f, officeProto, map[string]string{
		"J8": "Climate Zone", "K8": "4A", "L8": "Code", "M8": "2021",
		"O8": "Code", "P8": "2018",
		"L10": "Equipment", "M10": "Labor", "N10": "Replacement",
		"O10": "Equipment", "P10": "Labor", "Q10": "Replacement", "R10": "Total",
		"L11": "Cost", "M11": "Cost", "N11": "Life",
		"O11": "Cost", "P11": "Cost", "Q11": "Life", "R11": "Replacement Cost",
		"A13": "x", "A15": "x", "A20": "VBA macros below",
		"B13": "Boiler", "B15": "Chiller",
		"L13": "100", "M13": "10", "N13": "20", "O13": "90", "P13": "9", "Q13": "20", "R13": "5",
		"L15": "200", "M15": "20", "N15": "25",
	})

	_, err = f.NewSheet(config.DefaultCostSheet)
	require.NoError(t, err)
	setCells(t, f, config.DefaultCostSheet, map[string]string{
		"B20": "Small Office", "H21": "2A", "H23": "5",
	})

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

func outcomesByStatus(s *Summary, status string) []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func TestExtractHVAC(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Heatmap = true
	r, handler := newTestRunner(t, cfg)

	wbPath := filepath.Join(cfg.Paths.InputDir, "901-19_State_CE_Analysis.xlsm")
	createAnalysisWorkbook(t, wbPath)
	outDir := filepath.Join(cfg.Paths.HVACDir, "2019")

	summary, err := r.ExtractHVAC(context.Background(), wbPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Failures)
	assert.Equal(t, 3, summary.Successes) // workbook, state, heatmap
	assert.NotEmpty(t, summary.RunID)

	content := readFile(t, filepath.Join(outDir, "Texas_"+officeProto+".csv"))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Measure,Climate Zone,Year,Equipment Cost,Labor Cost,Replacement Life,Total Replacement Cost", lines[0])
	assert.Contains(t, lines, "Boiler,4A,2018,90,9,20,5")

	_, err = os.Stat(filepath.Join(outDir, cfg.Report.HeatmapFile))
	assert.NoError(t, err)
	require.Len(t, summary.Files, 2)
	assert.Len(t, summary.Files[0].Checksum, 64)
	assert.True(t, handler.ContainsMessage("entity_complete"))
}

func TestExtractCost(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	wbPath := filepath.Join(cfg.Paths.InputDir, "901-19_State_CE_Analysis.xlsm")
	createAnalysisWorkbook(t, wbPath)
	outDir := filepath.Join(cfg.Paths.CostDir, "2019")

	summary, err := r.ExtractCost(context.Background(), wbPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Successes)

	content := readFile(t, filepath.Join(outDir, "Texas.csv"))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 44)
	assert.Equal(t, "Building,Year,DeviceType,ClimateZone,Cost", lines[0])
	assert.Equal(t, "Small Office,-1,Lighting,2A,5", lines[1])
	assert.Equal(t, "Small Office,0,Lighting,2A,", lines[2])
}

func TestExtractHVAC_UnreadableWorkbook(t *testing.T) {
	cfg := testConfig(t)
	r, handler := newTestRunner(t, cfg)

	wbPath := filepath.Join(cfg.Paths.InputDir, "901-16_broken.xlsm")
	writeFile(t, wbPath, "not a workbook")

	summary, err := r.ExtractHVAC(context.Background(), wbPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, wbPath, summary.Failed()[0].Entity)
	assert.True(t, handler.ContainsMessage("entity_error"))

	errs := handler.GetRecordsByLevel(slog.LevelError)
	require.NotEmpty(t, errs)
	assert.Equal(t, wbPath, errs[0].Attrs["entity"])
	assert.Contains(t, errs[0].Attrs["error"], "failed to open workbook")
}

func TestExtractAll(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	createAnalysisWorkbook(t, filepath.Join(cfg.Paths.InputDir, "901-19_State_CE_Analysis.xlsm"))
	writeFile(t, filepath.Join(cfg.Paths.InputDir, "901-16_broken.xlsm"), "not a workbook")
	writeFile(t, filepath.Join(cfg.Paths.InputDir, "notes.xlsm"), "x")

	summary, err := r.ExtractAll(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.Paths.HVACDir, "2019", "Texas_"+officeProto+".csv"))
	assert.FileExists(t, filepath.Join(cfg.Paths.CostDir, "2019", "Texas.csv"))
	assert.Len(t, summary.Failed(), 2)
	skipped := outcomesByStatus(summary, StatusSkipped)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Entity, "notes.xlsm")

	only, err := r.ExtractAll(context.Background(), StepExtractCost)
	require.NoError(t, err)
	for _, o := range only.Outcomes {
		assert.NotEqual(t, StepExtractHVAC, o.Step)
	}

	_, err = r.ExtractAll(context.Background(), "bogus")
	assert.True(t, IsFatal(err))
}

func TestExtractAll_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	_, err := r.ExtractAll(context.Background())
	assert.True(t, IsFatal(err))
}

const texasHVAC = "Measure,Climate Zone,Year,Equipment Cost,Replacement Life\n" +
	"Boiler,2A,2018,100,20\n" +
	"Boiler,2A,2015,80,20\n" +
	"Chiller,2A,2018,50,15\n"

func TestAssembleHVAC(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	writeFile(t, cfg.Paths.CostMapFile, "state,target,base\nTexas,2018,2015\nOhio,2018,2015\nMaine,x,2015\n")
	writeFile(t, filepath.Join(cfg.Paths.HVACDir, "2018", "Texas_"+officeProto+".csv"), texasHVAC)

	summary, err := r.AssembleHVAC(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Successes)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, "Ohio_"+officeProto, summary.Failed()[0].Entity)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "line 4")

	assert.Equal(t,
		"Measure,Climate Zone,Base: Equipment Cost,Base: Replacement Life,Target: Equipment Cost,Target: Replacement Life\n"+
			"Boiler,2A,80,20,100,20\n"+
			"Chiller,2A,,,50,15\n",
		readFile(t, filepath.Join(cfg.Paths.HVACOutputDir, "Texas_"+officeProto+".csv")))

	assert.Equal(t,
		"State,Building,Measure,Climate Zone,Base: Equipment Cost,Base: Replacement Life,Target: Equipment Cost,Target: Replacement Life\n"+
			"Texas,"+officeProto+",Boiler,2A,80,20,100,20\n"+
			"Texas,"+officeProto+",Chiller,2A,,,50,15\n",
		readFile(t, filepath.Join(cfg.Paths.HVACOutputDir, "aggregate_hvac.csv")))
}

func TestAssembleHVAC_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	writeFile(t, cfg.Paths.CostMapFile, "state,target,base\nTexas,2018;2018,2015;2018\n")
	writeFile(t, filepath.Join(cfg.Paths.HVACDir, "2018", "Texas_"+officeProto+".csv"), texasHVAC)

	first, err := r.AssembleHVAC(context.Background())
	require.NoError(t, err)
	second, err := r.AssembleHVAC(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(first.Files), len(second.Files))
	for i := range first.Files {
		assert.Equal(t, first.Files[i].Checksum, second.Files[i].Checksum)
	}
}

func TestAssembleHVAC_FatalControlFile(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	writeFile(t, cfg.Paths.CostMapFile, "state,target\nTexas,2018\n")
	_, err := r.AssembleHVAC(context.Background())
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorTypeFatal, GetErrorType(err))
}

func TestAssembleHVAC_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)
	writeFile(t, cfg.Paths.CostMapFile, "state,target,base\nTexas,2018,2015\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.AssembleHVAC(ctx)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
}

func TestAssembleEnvelope(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	writeFile(t, cfg.Paths.TargetMapFile, "state,target\nTexas,2018\nOhio,2018\n")
	writeFile(t, filepath.Join(cfg.Paths.CostDir, "2018", "Texas.csv"),
		"Building,Year,DeviceType,ClimateZone,Cost\n"+
			"Office,-1,HVAC,2A,9\n"+
			"Office,-1,Lighting,2A,1.50\n"+
			"Office,-1,Envelope,2A,n/a\n"+
			"Office,0,Lighting,3B,2\n"+
			"Office,-1,Total,2A,100\n")

	summary, err := r.AssembleEnvelope(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Successes)
	assert.Equal(t, 1, summary.Failures)

	assert.Equal(t,
		"State,Building,CodeYear,DeviceType,Year,2A,3B\n"+
			"Texas,Office,2018,Envelope,-1,0,\n"+
			"Texas,Office,2018,Lighting,-1,1.5,\n"+
			"Texas,Office,2018,Lighting,0,,2\n",
		readFile(t, filepath.Join(cfg.Paths.EnvelopeOutputDir, "light_envelope_cost.csv")))
}

func TestAssembleEnvelope_NothingAssembled(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	writeFile(t, cfg.Paths.TargetMapFile, "state,target\nOhio,2018\n")
	_, err := r.AssembleEnvelope(context.Background())
	assert.True(t, IsFatal(err))
}

func TestFinishWritesSummary(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRunner(t, cfg)

	summary := NewSummary("run-1", StepAssembleHVAC)
	summary.Record(Outcome{Step: StepAssembleHVAC, Entity: "Texas", Status: StatusSucceeded})
	summary.Record(Outcome{Step: StepAssembleHVAC, Entity: "Ohio", Status: StatusFailed, Reason: "missing"})

	path, err := r.Finish(context.Background(), summary, cfg.Paths.HVACOutputDir)
	require.NoError(t, err)

	loaded, err := LoadSummaryFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, 1, loaded.Successes)
	assert.Equal(t, 1, loaded.Failures)
	assert.NotEmpty(t, loaded.Duration)
	require.Len(t, loaded.Outcomes, 2)
	assert.Equal(t, "missing", loaded.Outcomes[1].Reason)
}
