package driver

import (
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// IsMissingProcedure reports whether err indicates that the server does not
// recognize a procedure or function referenced by the query, typically
// because an optional plugin such as APOC or n10s is not installed. Missing
// functions surface as syntax errors rather than a dedicated code, and
// Memgraph reports missing procedures with a different shape than Neo4j, so
// the message is inspected as a fallback.
func IsMissingProcedure(err error) bool {
	if err == nil {
		return false
	}
	var neoErr *db.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == "Neo.ClientError.Procedure.ProcedureNotFound" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "procedurenotfound") ||
		strings.Contains(msg, "unknown procedure") ||
		strings.Contains(msg, "there is no procedure") ||
		strings.Contains(msg, "unknown function")
}

var (
	// ErrInvalidConfig indicates a driver configuration that cannot produce
	// a working connection.
	ErrInvalidConfig = errors.New("invalid driver configuration")

	// ErrRawUnsupported is returned by backends that cannot stream raw
	// results.
	ErrRawUnsupported = errors.New("raw results are not supported by this backend")

	// ErrCGORequired is returned by the ladybug driver when the binary was
	// built without cgo.
	ErrCGORequired = errors.New("ladybug driver requires cgo; rebuild with CGO_ENABLED=1")
)
