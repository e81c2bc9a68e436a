// Package dbpack packs a two-level source tree into a single container file.
//
// The input directory holds group folders; each folder holds items. Every
// item is offered to a list of content encoders in priority order, and items
// no encoder claims are copied verbatim under a key derived from their name:
// the folder name hashes to the group id, the text before the first '.' to
// the instance id, and the text after it to the type id.
//
// After all folders the packer adds three reserved entries: a table mapping
// every hashed name back to its text, a provenance signature, and optionally
// debug information describing the verbatim files.
//
// # Quick Start
//
// Pack a project with the default encoders:
//
//	err := dbpack.Pack(ctx, "./MyMod", "./MyMod.package",
//	    dbpack.WithSignature(signature.Patch51),
//	)
//
// Run in the background with pause and progress:
//
//	task := dbpack.NewTask("./MyMod", "./MyMod.package")
//	task.Start(ctx)
//	task.Pause()
//	fmt.Println(task.Progress(), task.CurrentFile())
//	task.Resume()
//	if err := task.Wait(); err != nil {
//	    return err
//	}
//
// A failed run still leaves a readable container holding every entry written
// before the failure; see [archive.Writer].
package dbpack
