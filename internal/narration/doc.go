// Package narration turns a live stream of combat events into spoken
// announcements for a listener who cannot see the screen.
//
// A Session is the single entry point the host drives: Start at encounter
// begin, OnEffect and OnHealthChanged for every update, Stop at the end.
// Inside, the session feeds four cooperating parts:
//
//   - the Classifier decides whether an action is worth saying, sizes it and
//     phrases it for immediate speech;
//   - the Ledger accumulates per-entity totals for the end-of-fight recap;
//   - the Monitor watches both sides' health, raising one-shot low/critical
//     alerts and, in batched mode, periodic status reports;
//   - the wave aggregator buffers batched events per side and speaks one
//     combined sentence once the fight has been quiet for a short window.
//
// Everything runs on the host's update loop. Deferred work (the wave flush
// and the periodic report) goes through a clock.Scheduler whose callbacks
// share that loop, so the package holds no locks.
package narration
