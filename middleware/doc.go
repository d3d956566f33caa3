// Package middleware authenticates HTTP requests with compact tokens.
//
// The token is extracted from the request (the Authorization bearer header by
// default), imported and validated through a TokenSource such as
// *jwtkit.Factory, and the validated *jwtkit.Token is stored in the request
// context for the next handler:
//
//	mw := middleware.New(factory)
//	http.Handle("/api/", mw.Handler(apiHandler))
//
//	func apiHandler(w http.ResponseWriter, r *http.Request) {
//		tok, _ := middleware.FromContext(r.Context())
//		fmt.Fprintln(w, tok.Payload()["sub"])
//	}
package middleware
