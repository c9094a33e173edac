// Package orchestrator sequences provider calls for a conversation.
//
// Two modes are supported:
//
//   - Reactive (HandleUserMessage): the user sends one message and every
//     participant answers it independently. Relevant memories are searched for
//     each participant before any call and injected into that participant's
//     prompt. Responses are committed in participant order.
//   - Dialogue (NewDialogue / Dialogue.Run): participants answer each other
//     round-robin around a topic, without memory injection.
//
// Fan-out is sequential by default or bounded-parallel (FanOutParallel). The
// failure policy decides whether a failed call aborts the round with a single
// error message (FailAbort) or is reported in place while the others are kept
// (FailContinue). A round can be cancelled through its context between
// provider calls; a call in flight is never interrupted.
package orchestrator
