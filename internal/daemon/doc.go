// Package daemon runs the long-lived scanning service.
//
// The daemon owns the periodic scan cycle: it drives the dual-backend
// scanner, classifies and persists every observation, routes each device
// through the notification gateway, and fans a scan_complete event out to
// all connected control-plane clients. Independent tickers sweep watched
// devices for absence alerts and prune old sighting history.
//
// The control plane is a unix socket speaking line-delimited JSON. Each
// connection is served independently; a malformed request or broken pipe
// on one connection never disturbs the scan loop or other clients.
//
// Lifecycle:
//
//	d := daemon.New(cfg, repo, scanner, gateway)
//	d.SetLogger(logger)
//	if err := d.Start(ctx); err != nil {
//	    return err
//	}
//	<-ctx.Done()
//	d.Stop()
//
// Stop closes client connections and the listener, waits for in-flight
// work, and removes the socket file last.
package daemon
