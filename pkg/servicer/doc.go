/*
Package servicer routes list operations to their handlers under the right access mode.

Every verb is statically classified as Reader or Writer by the signature of its
handler in the routing table. Readers project a response from a committed snapshot
without locking. Writers run inside a session.Manager transaction: the handler
receives a private copy of the committed list and its (new state, response) pair is
persisted all-or-nothing before the response is returned.

	svc := servicer.New(session.NewManager(memory.NewStore()))
	_ = svc.AddItem(ctx, "twentyfive", domain.KindGoals, "visit japan")
	resp, _ := svc.ListItems(ctx, "twentyfive", domain.KindGoals)
*/
package servicer
