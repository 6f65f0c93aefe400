/*
Package twentyfive keeps the "25 goals" lists of an instance: an ordered,
duplicate-free list of goals and one of tasks, shared by every replica that
talks to the same store.

# Concept

Each list is changed only through five operations. Create, Add, Move and
Delete are Writers: they run one at a time per instance, inside a
transaction that either commits the whole effect or nothing. List is a
Reader: it sees the last committed state and never blocks a Writer.

The operations themselves are pure functions in pkg/domain. pkg/servicer
routes a request to its handler and enforces its access mode, pkg/session
provides the per-instance transaction, and the adapters under pkg/adapters
persist instances (memory, file, redis, loam) and expose the service
(HTTP, MCP).

# Usage

	cfg := config.Default()
	cfg.Capacity = 25

	app, err := twentyfive.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	_ = app.Service.AddItem(ctx, "household", domain.KindGoals, "visit japan")
	resp, _ := app.Service.ListItems(ctx, "household", domain.KindGoals)
	fmt.Println(resp.Items)

The internal/config package is only importable inside this module; other
programs assemble the same pieces with servicer.New and session.NewManager.
*/
package twentyfive
