// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the sync workers; the identity and price feed
// services can be slow under load.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
