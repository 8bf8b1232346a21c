// Package gopdf provides a client for the GoPdf document conversion API.
//
// A caller describes a source document (a URL or raw HTML) and rendering
// options, submits them in a single POST and gets back either the PDF bytes
// or, when a filename is requested, a descriptor of a file the server keeps
// for two days.
//
// # Usage
//
// Create a client with your API key, build a request and convert:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := gopdf.NewClient("your-api-key", logger,
//		gopdf.WithTimeout(2*time.Minute),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	req := client.NewRequest().
//		SetMargin(gopdf.Margin{Top: "1cm", Bottom: "1cm"}).
//		AddCookie("session", "abc", true, true).
//		SetFooter("<p>{{page}}</p>", "5mm").
//		Protect(gopdf.Protection{OwnerPassword: "secret", NoCopy: gopdf.Bool(true)})
//
//	if _, err := req.Convert(ctx, "https://example.com"); err != nil {
//		log.Fatal(err)
//	}
//	if _, err := req.Save("example.pdf"); err != nil {
//		log.Fatal(err)
//	}
//
// Options without a dedicated setter go through Set and Get:
//
//	req.Set("landscape", true)
//
// For one-off conversions use ConvertTo:
//
//	res, err := client.ConvertTo(ctx, "<h1>Hi</h1>", map[string]any{"filename": "hi.pdf"}, "")
//	fmt.Println(res.HostedFile())
//
// # Error Handling
//
// A rejected conversion is returned as *APIError. Each kind has its own
// sentinel, so callers can branch with errors.Is:
//
//	switch {
//	case errors.Is(err, gopdf.ErrNoCredits):
//		// top up the account
//	case errors.Is(err, gopdf.ErrInvalidAPIKey):
//		// re-authenticate
//	}
//
// Transport failures and undecodable responses are reported as ErrProtocol
// with the underlying error available through errors.Unwrap.
//
// # Concurrency
//
// A Client is safe for concurrent use. A Request is not; use one Request per
// in-flight conversion, or BatchConvert for many documents.
package gopdf
