package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"coverkeep/internal/bookinfo"
	"coverkeep/internal/config"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSearchCredentials reports whether the image search API key and engine
// ID are set. Without them gather can still stage catalog copies.
func CheckSearchCredentials(cfg *config.Config) Result {
	const name = "Image search"
	switch {
	case strings.TrimSpace(cfg.Search.APIKey) == "":
		return Result{Name: name, Optional: true, Detail: "API key missing (set COVERKEEP_SEARCH_API_KEY)"}
	case strings.TrimSpace(cfg.Search.EngineID) == "":
		return Result{Name: name, Optional: true, Detail: "engine ID missing (set COVERKEEP_SEARCH_ENGINE_ID)"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "credentials configured"}
}

// CheckBookInfo runs a single volume lookup to confirm the books API is
// reachable. It uses a 10-second timeout and a single attempt.
func CheckBookInfo(ctx context.Context, bc bookinfo.Config) Result {
	const name = "Book info"
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := bookinfo.New(checkCtx, bc, nil)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	if _, _, err := client.Suggest(checkCtx, "Dune", "Frank Herbert"); err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "API reachable"}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
