// Package fp is the public entry point of foldkit.
//
// Every function takes a context first, awaits a *future.Future passed in
// the collection position (one level only), and returns a fully resolved
// result. The With variants bind their callbacks and return a Func that can
// be applied to collections later:
//
//	oddSquares := fp.TransformWith(
//	    transducer.Compose(transducer.Filter(isOdd), transducer.Map(square)),
//	    []any{},
//	)
//	out, err := oddSquares(ctx, []any{1, 2, 3, 4, 5}) // []any{1, 9, 25}
//
// MapPool bounds the number of outstanding mapper calls:
//
//	out, err := fp.MapPool(2)(ctx, ids, fetch)
//
// Init applies a loaded config.Config to the engine defaults:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	shutdown, err := fp.Init(ctx, *cfg)
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
package fp
