// Package lib is the Go SDK of rsbx, a client for a remote sandbox compute service.
//
// It looks up and creates the remote objects (apps, secrets, images, sandboxes) and
// drives the sandboxes: commands, filesystem, stdio, tunnels, waits and blobs. Sandboxes
// created with the SDK are registered in a local SQLite registry so they can be
// referred to by name.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	sb, err := client.CreateSandbox(ctx, lib.SandboxSpec{
//	    Name:    "dev",
//	    AppName: "my-app",
//	    Image:   lib.ImageSource{Registry: "python:3.13-slim"},
//	})
//
//	res, err := client.Exec(ctx, "dev", []string{"echo", "hi"}, &lib.ExecOpts{Stdout: os.Stdout})
//	client.TerminateSandbox(ctx, "dev")
//
// # Sandbox handles
//
// [Client.CreateSandbox] and [Client.SandboxFromID] return a [Sandbox] handle. The
// handle runs processes whose stdio are streams, opens files, lists, creates and
// removes paths, watches directories and exposes the port tunnels:
//
//	sb, _ := client.SandboxFromID(ctx, "dev")
//	p, _ := sb.Exec(ctx, []string{"cat"}, lib.ExecOptions{})
//	p.Stdin.Write([]byte("hello"))
//	p.Stdin.Close()
//	out, _ := p.Stdout.Text(ctx)
//	code, _ := p.Wait(ctx)
//
//	f, _ := sb.Open(ctx, "/tmp/data.txt", "w")
//	f.Write(ctx, []byte("data"))
//	f.Close(ctx)
//
//	tunnels, _ := sb.Tunnels(ctx, 0)
//	fmt.Println(tunnels[8080].URL())
//
// # Configuration
//
// The service address and token come from the profiles file (~/.rsbx.yaml) or the
// RSBX_SERVER_URL, RSBX_TOKEN_ID and RSBX_TOKEN_SECRET environment variables. [Config]
// fields override both.
//
// # Error Handling
//
// Errors can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: the resource doesn't exist.
//   - [ErrAlreadyExists]: a registered sandbox already has the name.
//   - [ErrNotValid]: invalid input or operation.
//   - [ErrTimeout]: an operation didn't finish in time.
//   - [ErrRemoteOperation]: the service reported the operation as failed, the
//     [OperationError] and [TerminalStatusError] types hold the details.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use. Process streams can be read from different
// goroutines.
package lib
