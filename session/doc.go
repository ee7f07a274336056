// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps one dashboard engine per browsing session.

Each session owns its own filters, sort order, page, search query and vote
ledger, so two browser tabs never see each other's state. Sessions live in a
size-bounded LRU with idle expiry (github.com/hashicorp/golang-lru/v2/expirable):

	m := session.NewManager(sources, cfg.MaxSessions, cfg.SessionTTL,
		engine.WithAcquireTimeout(cfg.AcquireTimeout))

	token, s, err := m.Create() // starts loading in the background
	s, ok := m.Get(token)       // renews the idle timer

Evicting a session cancels any acquisition still running for it. Close
evicts everything and waits for outstanding vote requests.
*/
package session
