package convergence

import (
	"context"
	"time"

	"github.com/matzehuels/converge/pkg/observability"
	"github.com/matzehuels/converge/pkg/tree"
)

// Logger is the sink for rendered conflict messages. *log.Logger from
// charmbracelet/log satisfies it.
type Logger interface {
	Warn(msg any, keyvals ...any)
}

// Enforcer runs a check and applies the driver policy around it.
type Enforcer struct {
	Logger Logger // receives one warning per conflict; may be nil
	Fail   bool   // return the aggregate error when conflicts exist
}

// Enforce checks t, logs every rendered conflict as a warning and, when Fail
// is set, returns the aggregate CONVERGENCE_VIOLATION error. The Result is
// returned whenever the tree itself was valid, even alongside that error.
func (e *Enforcer) Enforce(ctx context.Context, t *tree.Tree, opts Options) (*Result, error) {
	root := ""
	if t != nil && t.Len() > 0 {
		root = t.Coordinate(t.Root()).String()
	}

	hooks := observability.Check()
	hooks.OnCheckStart(ctx, root)
	start := time.Now()

	res, err := Check(t, opts)
	if err != nil {
		return nil, err
	}
	hooks.OnCheckComplete(ctx, root, res.Nodes, len(res.Conflicts), time.Since(start))

	if e.Logger != nil {
		for _, msg := range res.Messages {
			e.Logger.Warn(msg)
		}
	}
	if e.Fail {
		return res, res.Err()
	}
	return res, nil
}
