package solbc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// AnchorError is an error logged by an Anchor program such as Quarry.
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// SimulationFailure is what a node reports when preflight rejects a
// transaction.
type SimulationFailure struct {
	Message string
	Logs    []string
	// Program is the program that logged the failure, when one did.
	Program string
	// CustomCode is the program-defined error number; -1 when absent.
	CustomCode  int
	Anchor      *AnchorError
	Instruction interface{}
}

// AnalyzeSendError extracts preflight details from err. ok is false when
// err is not a simulation failure.
func AnalyzeSendError(err error) (failure *SimulationFailure, ok bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) || !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return nil, false
	}

	failure = &SimulationFailure{Message: rpcErr.Message, CustomCode: customCode(rpcErr.Message)}
	data, _ := rpcErr.Data.(map[string]interface{})
	if data == nil {
		return failure, true
	}

	if logs, ok := data["logs"].([]interface{}); ok {
		for _, entry := range logs {
			line, ok := entry.(string)
			if !ok {
				continue
			}
			failure.Logs = append(failure.Logs, line)

			if strings.Contains(line, "AnchorError") {
				anchor := parseAnchorErrorLog(line)
				failure.Anchor = &anchor
			}
			// "Program <id> failed: custom program error: 0x1e"
			if rest, found := strings.CutPrefix(line, "Program "); found && strings.Contains(rest, " failed: ") {
				failure.Program = strings.SplitN(rest, " ", 2)[0]
				if code := customCode(rest); code >= 0 {
					failure.CustomCode = code
				}
			}
		}
	}
	failure.Instruction = data["err"]
	return failure, true
}

// Fields renders the failure for structured logs with the last five log
// lines.
func (f *SimulationFailure) Fields() []zap.Field {
	fields := []zap.Field{zap.String("program", f.Program), zap.Int("custom_code", f.CustomCode)}
	if f.Anchor != nil {
		fields = append(fields, zap.String("anchor_error", f.Anchor.Name), zap.Int("anchor_code", f.Anchor.Code))
	}
	tail := f.Logs
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	return append(fields, zap.Strings("logs", tail))
}

func (f *SimulationFailure) String() string {
	switch {
	case f.Anchor != nil:
		return fmt.Sprintf("%s: %s (%d)", f.Program, f.Anchor.Name, f.Anchor.Code)
	case f.CustomCode >= 0:
		return fmt.Sprintf("%s: custom program error %d", f.Program, f.CustomCode)
	default:
		return f.Message
	}
}

func customCode(s string) int {
	const marker = "custom program error: 0x"
	i := strings.Index(s, marker)
	if i < 0 {
		return -1
	}
	hex := s[i+len(marker):]
	if end := strings.IndexFunc(hex, func(r rune) bool { return !strings.ContainsRune("0123456789abcdefABCDEF", r) }); end >= 0 {
		hex = hex[:end]
	}
	code, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return -1
	}
	return int(code)
}

// parseAnchorErrorLog reads
// "Program log: AnchorError occurred. Error Code: X. Error Number: 6000. Error Message: Y."
func parseAnchorErrorLog(line string) AnchorError {
	var out AnchorError
	if _, after, ok := strings.Cut(line, "Error Number:"); ok {
		num, _, _ := strings.Cut(after, ".")
		out.Code, _ = strconv.Atoi(strings.TrimSpace(num))
	}
	if _, after, ok := strings.Cut(line, "Error Code:"); ok {
		name, _, _ := strings.Cut(after, ".")
		out.Name = strings.TrimSpace(name)
	}
	if _, after, ok := strings.Cut(line, "Error Message:"); ok {
		out.Msg = strings.TrimSuffix(strings.TrimSpace(after), ".")
	}
	return out
}
