// Package voyr provides the VOYR Sub creator subscription engine for Go
// applications.
//
// VOYR Sub is designed as a library, not a service. One creator sells
// time-bounded access credentials to many subscribers, priced from a catalog
// of (price, duration) plans and paid through a delegated balance-transfer
// on an external payment medium. The engine provides:
//
//   - A plan catalog with index-addressed CRUD, mutable by administrators only
//   - A subscription ledger issuing unique, never-reused credential ids
//   - Exact expiration accounting across purchases, renewals, and grants
//   - Role-gated control: Creator and Owner authorities, owner-only pause,
//     revocation, and direct grants
//   - Append-only payment receipts for every committed extension
//   - Lifecycle hooks via a plugin registry for indexers and notifiers
//
// # Quick Start
//
// Create a service with your preferred store and external collaborators:
//
//	import (
//	    voyr "github.com/voyr/voyr-sub"
//	    "github.com/voyr/voyr-sub/store/memory"
//	)
//
//	svc := voyr.New(memory.New(), paymentMedium, authority, "creator-acct", "VOYLET")
//
//	ctx := context.Background()
//	if err := svc.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Stop()
//
// Administrators define plans; subscribers purchase them in whole periods:
//
//	err := svc.AddPlan(ctx, creator, 100, 30*24*3600) // 100 units / 30 days
//	rcpt, err := svc.Purchase(ctx, subscriber, 1, 0)
//
// Entitlement is a derived read, distinct from holding a credential:
//
//	active, err := svc.IsSubscriptionActive(ctx, subscriber)
//
// # Correctness model
//
// Every operation is atomic: it either completes fully or leaves no trace.
// Within a purchase the ledger commits before the external transfer is
// issued (checks, then effects, then interactions), so a re-entrant payment
// medium can never observe unpaid state or double-extend a subscription. A
// failed transfer rolls the whole purchase back and surfaces the error.
//
// Credentials are non-transferable. The generic transfer/approval surface
// expected by token-interface consumers is present but performs no state
// changes — see the Service transfer methods.
//
// # Stores
//
// State persistence is pluggable through store.Store, with in-memory,
// SQLite, PostgreSQL, and MongoDB implementations under store/.
package voyr
