// irisdump is the operator front-end for the parser packages: it decodes
// DNS captures, HTTP heads, and Mach-O binaries from the command line and
// prints what the library sees.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/irislabs/irisparse/analyze"
	"github.com/irislabs/irisparse/dnswire"
	"github.com/irislabs/irisparse/httpwire"
	"github.com/irislabs/irisparse/machoscan"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "expected 'dns', 'query', 'http-request', 'http-response', 'sha256', 'entropy' or 'macho' subcommands")
		os.Exit(1)
	}
	mode := os.Args[1]
	args := os.Args[2:]
	reportID := uuid.NewString()
	logger = logger.With("report_id", reportID, "mode", mode)

	var err error
	switch mode {
	case "dns":
		data, ierr := readInput(mode, args)
		if ierr != nil {
			err = ierr
			break
		}
		err = runDNS(data, os.Stdout)
	case "query":
		fs := flag.NewFlagSet("query", flag.ExitOnError)
		domain := fs.String("domain", "", "Domain name to query")
		qtype := fs.String("type", "A", "Query type (A, AAAA, NS, CNAME, PTR, MX, TXT, SRV, SVCB, HTTPS or a number)")
		id := fs.Uint("id", 0, "Transaction ID")
		rd := fs.Bool("rd", true, "Set the recursion desired flag")
		if err = fs.Parse(args); err != nil {
			break
		}
		err = runQuery(*domain, *qtype, uint16(*id), *rd, os.Stdout)
	case "http-request":
		data, ierr := readInput(mode, args)
		if ierr != nil {
			err = ierr
			break
		}
		err = runHTTPRequest(data, os.Stdout)
	case "http-response":
		data, ierr := readInput(mode, args)
		if ierr != nil {
			err = ierr
			break
		}
		err = runHTTPResponse(data, os.Stdout)
	case "sha256":
		err = runDigest(args, os.Stdout)
	case "entropy":
		fs := flag.NewFlagSet("entropy", flag.ExitOnError)
		file := fs.String("file", "", "File to analyze")
		if err = fs.Parse(args); err != nil {
			break
		}
		err = runEntropy(*file, os.Stdout)
	case "macho":
		fs := flag.NewFlagSet("macho", flag.ExitOnError)
		file := fs.String("file", "", "Mach-O binary to scan")
		if err = fs.Parse(args); err != nil {
			break
		}
		err = runMacho(*file, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", mode)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("done")
}

// readInput loads the payload for parse modes from -file or inline -hex.
func readInput(mode string, args []string) ([]byte, error) {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	file := fs.String("file", "", "File holding the raw bytes")
	hexstr := fs.String("hex", "", "Raw bytes as a hex string")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch {
	case *file != "":
		return os.ReadFile(*file)
	case *hexstr != "":
		return hex.DecodeString(strings.ReplaceAll(*hexstr, " ", ""))
	}
	return nil, fmt.Errorf("%s: need -file or -hex", mode)
}

func runDNS(data []byte, out io.Writer) error {
	m, err := dnswire.Parse(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, ";; id %d response=%v opcode=%d rcode=%d aa=%v tc=%v rd=%v ra=%v\n",
		m.ID, m.Response, m.Opcode, m.RCode, m.Authoritative, m.Truncated,
		m.RecursionDesired, m.RecursionAvailable)
	for _, q := range m.Questions {
		fmt.Fprintf(out, ";; question %s type=%d class=%d\n", q.Name, q.Type, q.Class)
	}
	printSection(out, "answer", m.Answers)
	printSection(out, "authority", m.Authority)
	printSection(out, "additional", m.Additional)
	return nil
}

func printSection(out io.Writer, name string, records []dnswire.Record) {
	for _, r := range records {
		fmt.Fprintf(out, ";; %s %s ttl=%d type=%d %s\n", name, r.Name, r.TTL, r.Type, r.Display)
	}
}

var queryTypes = map[string]uint16{
	"A":     dnswire.TypeA,
	"NS":    dnswire.TypeNS,
	"CNAME": dnswire.TypeCNAME,
	"PTR":   dnswire.TypePTR,
	"MX":    dnswire.TypeMX,
	"TXT":   dnswire.TypeTXT,
	"AAAA":  dnswire.TypeAAAA,
	"SRV":   dnswire.TypeSRV,
	"SVCB":  dnswire.TypeSVCB,
	"HTTPS": dnswire.TypeHTTPS,
}

func runQuery(domain, qtype string, id uint16, rd bool, out io.Writer) error {
	if domain == "" {
		return fmt.Errorf("query: -domain is required")
	}
	t, ok := queryTypes[strings.ToUpper(qtype)]
	if !ok {
		n, err := strconv.ParseUint(qtype, 10, 16)
		if err != nil {
			return fmt.Errorf("query: unknown type %q", qtype)
		}
		t = uint16(n)
	}
	raw, err := dnswire.BuildQueryIDNA(domain, t, id, rd)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(raw))
	return nil
}

func runHTTPRequest(data []byte, out io.Writer) error {
	req, err := httpwire.ParseRequest(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "method=%s path=%s version=1.%d\n", req.Method, req.Path, req.VersionMinor)
	fmt.Fprintf(out, "content-length=%d chunked=%v close=%v header-end=%d\n",
		req.ContentLength, req.Chunked, req.ShouldClose(), req.HeaderEnd)
	for _, h := range req.Headers {
		fmt.Fprintf(out, "  %s: %s\n", h.Name, h.Value)
	}
	return nil
}

func runHTTPResponse(data []byte, out io.Writer) error {
	resp, err := httpwire.ParseResponse(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "status=%d reason=%q version=1.%d\n", resp.StatusCode, resp.Reason, resp.VersionMinor)
	fmt.Fprintf(out, "content-length=%d chunked=%v has-body=%v close=%v header-end=%d\n",
		resp.ContentLength, resp.Chunked, resp.HasBody(), resp.ShouldClose(), resp.HeaderEnd)
	for _, h := range resp.Headers {
		fmt.Fprintf(out, "  %s: %s\n", h.Name, h.Value)
	}
	return nil
}

func runDigest(paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return fmt.Errorf("sha256: need at least one path")
	}
	for i, sum := range analyze.DigestFiles(paths) {
		if sum == "" {
			sum = strings.Repeat("-", 64)
		}
		fmt.Fprintf(out, "%s  %s\n", sum, paths[i])
	}
	return nil
}

func runEntropy(path string, out io.Writer) error {
	if path == "" {
		return fmt.Errorf("entropy: -file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c := analyze.Classify(data)
	fmt.Fprintf(out, "entropy=%.4f chi-square=%.1f monte-carlo-error=%.4f verdict=%s\n",
		c.Entropy, c.ChiSquare, c.MonteCarloError, c.Verdict)
	return nil
}

func runMacho(path string, out io.Writer) error {
	if path == "" {
		return fmt.Errorf("macho: -file is required")
	}
	info, err := machoscan.ScanFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "filetype=%d\n", info.FileType)
	for _, d := range info.LoadDylibs {
		fmt.Fprintf(out, "load %s\n", d)
	}
	for _, d := range info.WeakDylibs {
		fmt.Fprintf(out, "weak %s\n", d)
	}
	for _, d := range info.Rpaths {
		fmt.Fprintf(out, "rpath %s\n", d)
	}
	for _, d := range info.ReexportDylibs {
		fmt.Fprintf(out, "reexport %s\n", d)
	}
	return nil
}
