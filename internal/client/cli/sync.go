package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
)

func (a *App) Sync(ctx context.Context) error {
	fmt.Fprintln(a.out, a.sync.SyncNow(ctx).String())
	return nil
}

func (a *App) Pull(ctx context.Context) error {
	fmt.Fprintln(a.out, a.sync.PullAndMergeAll(ctx).String())
	return nil
}

// Push pushes one kind, or every kind when none is given.
func (a *App) Push(ctx context.Context, args []string) error {
	kinds := models.AllKinds
	if len(args) > 0 {
		k, ok := models.ParseKind(args[0])
		if !ok {
			fmt.Fprintf(a.out, "Usage: push [%s|%s|%s|%s]\n", models.KindUsers, models.KindTypes, models.KindContacts, models.KindRecords)
			return nil
		}
		kinds = []models.Kind{k}
	}

	for _, k := range kinds {
		fmt.Fprintln(a.out, a.sync.PushAll(ctx, k).String())
	}
	return nil
}
