// Package guard flips tripbook binaries into test mode. Test packages that
// link a main package import it for its side effect.
package guard

import (
	"os"

	"github.com/odyssey-erp/tripbook/internal/app"
)

func init() {
	if os.Getenv("TRIPBOOK_TEST_MODE") == "" {
		_ = os.Setenv("TRIPBOOK_TEST_MODE", "1")
	}
	app.RefreshTestMode()
}
