// Package runtime is the host-side facade over the core packages. It
// builds a validation evaluator and template function registry from the
// configuration, loads the rule catalog, and records logs and metrics for
// every validation and render.
//
//	rt, err := runtime.New(cfg, runtime.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := rt.LoadCatalog(ctx); err != nil {
//	    return err
//	}
//
//	report, err := rt.ValidateNamed(ctx, "signup", record)
//	out, err := rt.RenderNamed(ctx, "greeting", rt.NewContext(ctx))
//
// value, validation and template stay free of I/O, logging and metrics;
// everything observable happens here.
package runtime
