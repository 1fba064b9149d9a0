// Command imapfetch retrieves one or more IMAP message bodies named by
// imap:// or imaps:// URLs (spec.md §1), writing each body to a file named
// "<mailbox>-<uid>.msg". Multiple URLs are fetched concurrently, one connection per
// URL — the engine itself is strictly single-connection and
// non-pipelining (spec.md Non-goals); the concurrency here is at the
// process level, across independent Conns, not inside one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"imapfetch/internal/blobstore"
	"imapfetch/internal/conf"
	"imapfetch/internal/imap"
	"imapfetch/internal/imap/urlpath"
	"imapfetch/internal/models"
	"imapfetch/internal/receipt"
	"imapfetch/internal/store"
	"imapfetch/internal/transport"
)

func main() {
	user := flag.String("user", "", "IMAP username")
	pass := flag.String("pass", "", "IMAP password")
	outDir := flag.String("out", ".", "directory to write fetched bodies into")
	tlsMode := flag.String("tls", "opportunistic", "opportunistic, required, or none")
	storePath := flag.String("store", "", "path to the local fetch ledger (disabled if empty)")
	connectTimeout := flag.Duration("connect-timeout", 15*time.Second, "TCP/TLS dial timeout")
	respTimeout := flag.Duration("response-timeout", 30*time.Second, "per-response timeout")
	blobBucket := flag.String("blobstore-bucket", "", "also upload each fetched body to this S3 bucket (disabled if empty)")
	receiptKey := flag.String("receipt-key", "", "HMAC secret for signing a fetch receipt per message (disabled if empty)")
	flag.Parse()

	urls := flag.Args()
	if len(urls) == 0 {
		log.Fatal("usage: imapfetch [flags] imap://host/mailbox;UID=<n> [more URLs...]")
	}

	cfg, err := conf.LoadConfig()
	if err != nil {
		log.Printf("no config file found, using flag/URL defaults: %v", err)
		cfg = &conf.Config{}
	}

	if *storePath == "" {
		*storePath = cfg.Store.Path
	}
	if *blobBucket == "" && cfg.BlobStore.Enabled {
		*blobBucket = cfg.BlobStore.Bucket
	}
	if *receiptKey == "" && cfg.Receipt.Enabled {
		if key, rerr := os.ReadFile(cfg.Receipt.SigningKey); rerr == nil {
			*receiptKey = strings.TrimSpace(string(key))
		} else {
			log.Printf("receipt enabled in config but signing key unreadable: %v", rerr)
		}
	}
	if *tlsMode == "opportunistic" && cfg.TLSMode != "" {
		*tlsMode = cfg.TLSMode
	}

	var ledger *store.Store
	if *storePath != "" {
		ledger, err = store.Open(*storePath)
		if err != nil {
			log.Fatalf("opening fetch ledger: %v", err)
		}
		defer ledger.Close()
	}

	mode, err := parseTLSMode(*tlsMode)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("imapfetch starting: %d target(s), tls=%s, out=%s", len(urls), *tlsMode, *outDir)

	group, ctx := errgroup.WithContext(context.Background())
	for i, raw := range urls {
		i, raw := i, raw
		group.Go(func() error {
			return fetchOne(ctx, fetchParams{
				identity:       i,
				rawURL:         raw,
				user:           *user,
				pass:           *pass,
				outDir:         *outDir,
				tlsMode:        mode,
				connectTimeout: *connectTimeout,
				respTimeout:    *respTimeout,
				ledger:         ledger,
				blobBucket:     *blobBucket,
				receiptKey:     *receiptKey,
			})
		})
	}

	if err := group.Wait(); err != nil {
		log.Fatalf("fetch failed: %v", err)
	}
	log.Println("imapfetch done")
}

func parseTLSMode(s string) (imap.TLSMode, error) {
	switch strings.ToLower(s) {
	case "opportunistic", "":
		return imap.TLSOpportunistic, nil
	case "required":
		return imap.TLSRequired, nil
	case "none":
		return imap.TLSNone, nil
	default:
		return 0, fmt.Errorf("unknown -tls value %q", s)
	}
}

type fetchParams struct {
	identity       int
	rawURL         string
	user, pass     string
	outDir         string
	tlsMode        imap.TLSMode
	connectTimeout time.Duration
	respTimeout    time.Duration
	ledger         *store.Store
	blobBucket     string
	receiptKey     string
}

func fetchOne(ctx context.Context, p fetchParams) error {
	u, err := url.Parse(p.rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", p.rawURL, imap.ErrURLMalformed)
	}

	implicitTLS := u.Scheme == "imaps"
	if !implicitTLS && u.Scheme != "imap" {
		return fmt.Errorf("%s: unsupported scheme %q: %w", p.rawURL, u.Scheme, imap.ErrUnsupportedProtocol)
	}

	path, err := urlpath.Decode(u.Path)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", p.rawURL, imap.ErrURLMalformed, err)
	}

	host := u.Host
	if !strings.Contains(host, ":") {
		if implicitTLS {
			host += ":993"
		} else {
			host += ":143"
		}
	}

	mode := p.tlsMode
	if implicitTLS {
		mode = imap.TLSImplicit
	}

	var t transport.Transport
	if implicitTLS {
		t, err = transport.DialTLS(host, u.Hostname(), p.connectTimeout)
	} else {
		t, err = transport.DialTCP(host, p.connectTimeout)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", p.rawURL, err)
	}

	conn := imap.NewConn(t, u.Hostname(), p.identity, mode, imap.Credentials{User: p.user, Pass: p.pass}, nil)

	if err := conn.Connect(p.respTimeout); err != nil {
		_ = t.Close()
		return fmt.Errorf("%s: connect: %w", p.rawURL, err)
	}

	outPath := filepath.Join(p.outDir, fmt.Sprintf("%s-%s.msg", sanitize(path.Mailbox), sanitize(path.UID)))
	f, err := os.Create(outPath)
	if err != nil {
		_ = conn.Disconnect(p.respTimeout)
		return fmt.Errorf("%s: creating %s: %w", p.rawURL, outPath, err)
	}
	defer f.Close()

	sink := imap.BodySink(imap.WriterSink{W: f})
	var blob *blobstore.Sink
	if p.blobBucket != "" {
		blob, err = blobstore.NewSink(ctx, blobstore.Config{Bucket: p.blobBucket}, filepath.Base(outPath))
		if err != nil {
			log.Printf("%s: blobstore disabled for this fetch: %v", p.rawURL, err)
		} else {
			sink = imap.TeeSink{Sinks: []imap.BodySink{sink, blob}}
		}
	}

	progress := &models.Progress{}
	req := &imap.Request{
		Mailbox:     path.Mailbox,
		UIDValidity: path.UIDValidity,
		UID:         path.UID,
		Section:     path.Section,
		Transfer:    imap.TransferBody,
		Progress:    progress,
		Sink:        sink,
	}

	tlsUsed := implicitTLS || mode == imap.TLSRequired || mode == imap.TLSOpportunistic

	if err := conn.Do(req, p.respTimeout); err != nil {
		conn.Done(err)
		_ = conn.Disconnect(p.respTimeout)
		return fmt.Errorf("%s: fetch: %w", p.rawURL, err)
	}
	conn.Done(nil)

	if blob != nil {
		if err := blob.Flush(ctx); err != nil {
			log.Printf("%s: blobstore upload failed: %v", p.rawURL, err)
		}
	}

	log.Printf("%s: fetched %d bytes -> %s", p.rawURL, progress.BytesSoFar, outPath)

	if p.ledger != nil {
		_ = p.ledger.Record(store.Fetch{
			Host: u.Hostname(), Mailbox: path.Mailbox, UIDValidity: path.UIDValidity,
			UID: path.UID, Section: path.Section, BytesFetched: progress.BytesSoFar,
			TLSUsed: tlsUsed,
		})
	}

	if p.receiptKey != "" {
		signer := receipt.NewSigner([]byte(p.receiptKey), "imapfetch")
		token, err := signer.Sign(receipt.Claims{
			Mailbox: path.Mailbox, UIDValidity: path.UIDValidity, UID: path.UID,
			Section: path.Section, BytesFetched: progress.BytesSoFar, TLSUsed: tlsUsed,
		}, 24*time.Hour)
		if err != nil {
			log.Printf("%s: receipt signing failed: %v", p.rawURL, err)
		} else {
			log.Printf("%s: receipt %s", p.rawURL, token)
		}
	}

	return conn.Disconnect(p.respTimeout)
}

func sanitize(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(s)
}

