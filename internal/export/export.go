package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-amm-kit/internal/dex/saber"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format      ExportFormat
	OutputDir   string
	LPMint      string // only positions staking this LP mint
	NonZeroOnly bool   // skip miners with no stake and nothing to claim
}

// Position is one miner joined with its farm and pool.
type Position struct {
	Miner     string          `json:"miner"`
	Owner     string          `json:"owner"`
	Farm      string          `json:"farm"`
	Pool      string          `json:"pool,omitempty"`
	LPMint    string          `json:"lp_mint"`
	Staked    uint64          `json:"staked"`
	Unclaimed decimal.Decimal `json:"unclaimed_sbr"`
}

func PositionCSVHeaders() []string {
	return []string{"miner", "owner", "farm", "pool", "lp_mint", "staked", "unclaimed_sbr"}
}

func (p Position) ToCSV() []string {
	return []string{p.Miner, p.Owner, p.Farm, p.Pool, p.LPMint, strconv.FormatUint(p.Staked, 10), p.Unclaimed.String()}
}

// PoolRow is the flat view of a linked stable-swap pool.
type PoolRow struct {
	Address     string `json:"address"`
	MintA       string `json:"mint_a"`
	MintB       string `json:"mint_b"`
	LPMint      string `json:"lp_mint"`
	AmpFactor   uint64 `json:"amp_factor"`
	TradeFeeBps string `json:"trade_fee_bps"`
	WrappedA    bool   `json:"wrapped_a"`
	WrappedB    bool   `json:"wrapped_b"`
	Farm        string `json:"farm,omitempty"`
}

func PoolCSVHeaders() []string {
	return []string{"address", "mint_a", "mint_b", "lp_mint", "amp_factor", "trade_fee_bps", "wrapped_a", "wrapped_b", "farm"}
}

func (r PoolRow) ToCSV() []string {
	return []string{
		r.Address, r.MintA, r.MintB, r.LPMint,
		strconv.FormatUint(r.AmpFactor, 10), r.TradeFeeBps,
		strconv.FormatBool(r.WrappedA), strconv.FormatBool(r.WrappedB), r.Farm,
	}
}

// PoolRows flattens pools, sorted by address.
func PoolRows(pools []*saber.StableSwap) []PoolRow {
	rows := make([]PoolRow, 0, len(pools))
	for _, p := range pools {
		row := PoolRow{
			Address:     p.Address.String(),
			MintA:       p.MintA.String(),
			MintB:       p.MintB.String(),
			LPMint:      p.PoolMint.String(),
			AmpFactor:   p.TargetAmpFactor,
			TradeFeeBps: feeBps(p.Fees.TradeFeeNumerator, p.Fees.TradeFeeDenominator),
			WrappedA:    p.WrapA != nil,
			WrappedB:    p.WrapB != nil,
		}
		if p.Farm != nil {
			row.Farm = p.Farm.Address.String()
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Address < rows[j].Address })
	return rows
}

func feeBps(num, denom uint64) string {
	if denom == 0 {
		return "0"
	}
	return decimal.NewFromInt(10_000).
		Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(num), 0)).
		Div(decimal.NewFromBigInt(new(big.Int).SetUint64(denom), 0)).
		String()
}

// Positions joins miners to the farms and pools they stake in. Miners of
// unknown farms are skipped.
func Positions(pools []*saber.StableSwap, miners []*saber.Miner) ([]Position, error) {
	byFarm := make(map[solana.PublicKey]*saber.StableSwap, len(pools))
	for _, p := range pools {
		if p.Farm != nil {
			byFarm[p.Farm.Address] = p
		}
	}

	out := make([]Position, 0, len(miners))
	for _, m := range miners {
		pool, ok := byFarm[m.Farm]
		if !ok {
			continue
		}
		unclaimed, err := saber.UnclaimedRewardsHuman(pool.Farm, m, saber.SBRDecimals)
		if err != nil {
			return nil, err
		}
		out = append(out, Position{
			Miner:     m.Address.String(),
			Owner:     m.Owner.String(),
			Farm:      m.Farm.String(),
			Pool:      pool.Address.String(),
			LPMint:    pool.Farm.TokenMint.String(),
			Staked:    m.Balance,
			Unclaimed: unclaimed,
		})
	}
	return out, nil
}

// PositionExporter writes farm positions and pool listings to disk.
type PositionExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewPositionExporter(logger *zap.Logger) *PositionExporter {
	return &PositionExporter{
		logger: logger,
		now:    time.Now,
	}
}

// ExportPositions writes the positions matching options and returns the
// file path.
func (pe *PositionExporter) ExportPositions(positions []Position, options ExportOptions) (string, error) {
	filtered := filterPositions(positions, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no positions match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Staked != filtered[j].Staked {
			return filtered[i].Staked > filtered[j].Staked
		}
		return filtered[i].Miner < filtered[j].Miner
	})

	rows := make([][]string, len(filtered))
	for i, p := range filtered {
		rows[i] = p.ToCSV()
	}

	doc := struct {
		ExportTime     time.Time       `json:"export_time"`
		PositionCount  int             `json:"position_count"`
		TotalUnclaimed decimal.Decimal `json:"total_unclaimed_sbr"`
		Positions      []Position      `json:"positions"`
	}{
		ExportTime:     pe.now(),
		PositionCount:  len(filtered),
		TotalUnclaimed: TotalUnclaimed(filtered),
		Positions:      filtered,
	}

	return pe.write("positions", options, PositionCSVHeaders(), rows, doc, len(filtered))
}

// ExportPools writes pool rows and returns the file path.
func (pe *PositionExporter) ExportPools(rows []PoolRow, options ExportOptions) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no pools to export")
	}

	csvRows := make([][]string, len(rows))
	for i, r := range rows {
		csvRows[i] = r.ToCSV()
	}

	doc := struct {
		ExportTime time.Time `json:"export_time"`
		PoolCount  int       `json:"pool_count"`
		Pools      []PoolRow `json:"pools"`
	}{
		ExportTime: pe.now(),
		PoolCount:  len(rows),
		Pools:      rows,
	}

	return pe.write("pools", options, PoolCSVHeaders(), csvRows, doc, len(rows))
}

func (pe *PositionExporter) write(prefix string, options ExportOptions, headers []string, rows [][]string, doc interface{}, count int) (string, error) {
	filename := fmt.Sprintf("%s_%s.%s", prefix, pe.now().Format("20060102_150405"), options.Format)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = exportToCSV(outputPath, headers, rows)
	case FormatJSON:
		err = exportToJSON(outputPath, doc)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	pe.logger.Info("Exported "+prefix,
		zap.String("file", outputPath),
		zap.Int("count", count),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func filterPositions(positions []Position, options ExportOptions) []Position {
	var filtered []Position
	for _, p := range positions {
		if options.LPMint != "" && p.LPMint != options.LPMint {
			continue
		}
		if options.NonZeroOnly && p.Staked == 0 && p.Unclaimed.IsZero() {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// TotalUnclaimed sums unclaimed rewards across positions.
func TotalUnclaimed(positions []Position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Unclaimed)
	}
	return total
}

func exportToCSV(outputPath string, headers []string, rows [][]string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func exportToJSON(outputPath string, doc interface{}) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
