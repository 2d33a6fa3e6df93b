// Package event is the host's event bus.
//
// Subscribers attach a Handler to a topic with On, or with Once for
// one-shot moments such as setup and ready. Emit delivers synchronously, in
// subscription order, on the caller's goroutine:
//
//	bus := event.NewBus()
//	bus.Once(event.TopicReady, func(ctx context.Context, _ any) error {
//	    return orchestrator.Ready(ctx)
//	})
//	err := bus.Emit(ctx, event.TopicReady, nil)
//
// A failing or panicking handler does not stop delivery to the others; all
// failures are returned from Emit joined together.
package event
