package twentyfive_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/twentyfive"
	"github.com/aretw0/twentyfive/internal/config"
	"github.com/aretw0/twentyfive/pkg/domain"
)

// ExampleOpen builds an in-memory service, seeds it and reorders the goals.
func ExampleOpen() {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Capacity = 25
	cfg.Seed.Goals = []string{"learn spanish", "visit japan"}

	app, err := twentyfive.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	if err := app.Seed(ctx); err != nil {
		log.Fatal(err)
	}
	if err := app.Service.MoveItem(ctx, cfg.Instance, domain.KindGoals, "visit japan", 0); err != nil {
		log.Fatal(err)
	}

	goals, err := app.Service.ListItems(ctx, cfg.Instance, domain.KindGoals)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(goals.Items)
	fmt.Println(*goals.Remaining, "to go")

	// Output:
	// [visit japan learn spanish]
	// 23 to go
}

// ExampleWithHooks subscribes to committed changes.
func ExampleWithHooks() {
	ctx := context.Background()

	app, err := twentyfive.Open(ctx, config.Default(), twentyfive.WithHooks(domain.Hooks{
		OnCommit: func(_ context.Context, e *domain.OperationEvent) {
			if e.Diff != nil {
				fmt.Printf("%s rev %d: %v\n", e.Kind, e.Diff.Revision, e.Diff.Items)
			}
		},
	}))
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	_ = app.Service.AddItem(ctx, "home", domain.KindTasks, "buy milk")
	_ = app.Service.AddItem(ctx, "home", domain.KindTasks, "buy milk")
	_ = app.Service.AddItem(ctx, "home", domain.KindTasks, "call mom")

	// Output:
	// tasks rev 1: [buy milk]
	// tasks rev 2: [buy milk call mom]
}
