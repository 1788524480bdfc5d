// Package foreign selects and invokes the service entry point exported by a
// loaded native library.
//
// A library may export two shapes of entry point. The rich shape takes the
// path of an auxiliary plugin as a C string; the plain shape takes nothing.
// The rich shape wins whenever it is exported. The choice is made once, when
// the Orchestrator is built.
//
// Invoke runs the entry point on the calling goroutine. Start runs it on a
// goroutine locked to its own OS thread and returns an Invocation to wait
// on:
//
//	orch, err := foreign.New(lib, foreign.WithPluginPath("./plugin.so"))
//	if err != nil {
//	    return err
//	}
//	inv, err := orch.Start()
//	if err != nil {
//	    return err
//	}
//	return orch.Await(ctx, inv)
//
// # Cancellation
//
// Native code has no cancellation channel. When ctx ends first, Await stops
// waiting and returns ErrInterrupted; the foreign call keeps running until its
// own shutdown logic returns. The library must stay open until then.
package foreign
