// Command fabrica generates typed blueprint code from a YAML manifest.
//
//	fabrica -manifest fixtures.yaml -out ./blogfix
//	fabrica -manifest fixtures.yaml -out ./blogfix -watch
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/fabrica/compiler/gen"
)

func main() {
	var (
		manifest = flag.String("manifest", "fixtures.yaml", "path to the manifest file")
		out      = flag.String("out", ".", "output directory")
		pkg      = flag.String("pkg", "", "output package name (defaults to the manifest's)")
		workers  = flag.Int("workers", 0, "parallel generation workers (0 = GOMAXPROCS)")
		watch    = flag.Bool("watch", false, "regenerate when the manifest changes")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []gen.Option{gen.WithOutDir(*out)}
	if *pkg != "" {
		opts = append(opts, gen.WithPackage(*pkg))
	}
	if *workers > 0 {
		opts = append(opts, gen.WithWorkers(*workers))
	}

	if err := generate(ctx, *manifest, opts); err != nil {
		log.Fatalf("fabrica: %v", err)
	}
	if !*watch {
		return
	}
	if err := watchManifest(ctx, *manifest, opts); err != nil {
		log.Fatalf("fabrica: %v", err)
	}
}

func generate(ctx context.Context, manifest string, opts []gen.Option) error {
	m, err := gen.LoadManifestFile(manifest)
	if err != nil {
		return err
	}
	if err := gen.Generate(ctx, m, opts...); err != nil {
		return err
	}
	log.Printf("generated %d type(s) from %s", len(m.Types), manifest)
	return nil
}

// watchManifest regenerates on every write to the manifest file. The watch
// is on the containing directory; editors commonly replace the file on
// save, which would silently drop a direct file watch.
func watchManifest(ctx context.Context, manifest string, opts []gen.Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(manifest)); err != nil {
		return err
	}
	log.Printf("watching %s", manifest)
	target := filepath.Clean(manifest)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watcher.Errors:
			return err
		case ev := <-watcher.Events:
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := generate(ctx, manifest, opts); err != nil {
				log.Printf("regeneration failed: %v", err)
			}
		}
	}
}
