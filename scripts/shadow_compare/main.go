// Command shadow_compare replays read-only requests against the legacy
// server and this API and reports response drift.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
	// Ignore lists top-level object keys dropped before comparing, per item for arrays.
	Ignore []string `json:"ignore"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		adminToken  string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:3000", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3001", "Legacy server base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&adminToken, "admin-token", "", "Admin session token sent to the Go API")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results      []comparison
		breaking     int
		optionalDiff int
	)
	for _, t := range targets {
		res := compareTarget(client, goBase, legacyBase, adminToken, t)
		if res.Error != nil || !res.StatusMatch || !res.BodyMatch {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, goBase, legacyBase, adminToken string, tgt target) comparison {
	res := comparison{Target: tgt}

	goStatus, goBody, goDur, err := fetch(client, goBase, adminToken, tgt)
	if err != nil {
		res.Error = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := fetch(client, legacyBase, "", tgt)
	if err != nil {
		res.Error = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GoStatus, res.LegacyStatus = goStatus, legacyStatus
	res.DurationGo, res.DurationLegacy = goDur, legacyDur
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(unwrapData(goBody), legacyBody, tgt.Ignore)
	return res
}

func fetch(client *http.Client, base, adminToken string, tgt target) (int, []byte, time.Duration, error) {
	if client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if adminToken != "" {
		req.Header.Set("X-Admin-Token", adminToken)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// unwrapData strips the {"data": ...} envelope so payloads line up with the
// legacy server's bare JSON.
func unwrapData(body []byte) []byte {
	var envelope map[string]interface{}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return body
	}
	data, ok := envelope["data"]
	if !ok {
		return body
	}
	out, err := sonic.Marshal(data)
	if err != nil {
		return body
	}
	return out
}

func bodiesEqual(a, b []byte, ignore []string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := sonic.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := sonic.Unmarshal(b, &bj); err != nil {
		return false
	}
	aj = normalize(aj, ignore)
	bj = normalize(bj, ignore)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v interface{}, ignore []string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for _, key := range ignore {
			delete(val, key)
		}
		for k, inner := range val {
			val[k] = normalize(inner, nil)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = normalize(inner, ignore)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	default:
		return val
	}
}

func printReport(results []comparison) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Go Status: %d (%s)\n", res.GoStatus, res.DurationGo)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
