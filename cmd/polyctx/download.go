package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// UCSC per-chromosome FASTA downloads, wrapped at 50 bases per line.
var ucscBaseURL = "https://hgdownload.soe.ucsc.edu/goldenPath"

// defaultChroms are the primary assembly chromosomes.
var defaultChroms = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12",
	"13", "14", "15", "16", "17", "18", "19", "20", "21", "22", "X", "Y",
}

// chromURL returns the compressed chromosome FASTA URL for an assembly.
func chromURL(assembly, chrom string) string {
	return fmt.Sprintf("%s/%s/chromosomes/chr%s.fa.gz", ucscBaseURL, assembly, chrom)
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly string
		destDir  string
	)

	cmd := &cobra.Command{
		Use:   "download [chrom...]",
		Short: "Download per-chromosome reference files",
		Long: `Download UCSC chromosome FASTA files and store them uncompressed, one file
per chromosome, in the reference directory. Uncompressed files are required
for seeking by byte offset. Files already present are skipped.`,
		Example: `  polyctx download                         # hg19, all primary chromosomes
  polyctx download --dir /data/ref/hg19 1 2 X
  polyctx download --assembly hg38 17`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if destDir == "" {
				destDir = viper.GetString("reference.dir")
			}
			if destDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("cannot determine home directory: %w", err)
				}
				destDir = filepath.Join(home, ".polyctx", strings.ToLower(assembly))
			}
			chroms := args
			if len(chroms) == 0 {
				chroms = defaultChroms
			}
			return runDownload(cmd.OutOrStdout(), assembly, destDir, chroms)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "hg19", "UCSC assembly name")
	cmd.Flags().StringVar(&destDir, "dir", "", "Output directory (default: reference.dir, else ~/.polyctx/<assembly>)")

	return cmd
}

func runDownload(out io.Writer, assembly, destDir string, chroms []string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	fmt.Fprintf(out, "Downloading %s reference chromosomes...\n", assembly)
	fmt.Fprintf(out, "Destination: %s\n\n", destDir)

	paths := referencePaths()
	paths.Dir = destDir
	for _, chrom := range chroms {
		chrom = strings.TrimPrefix(chrom, "chr")
		if err := downloadFile(out, chromURL(assembly, chrom), paths.Path(chrom)); err != nil {
			return fmt.Errorf("downloading chr%s: %w", chrom, err)
		}
	}

	fmt.Fprintf(out, "\nDownload complete!\n")
	fmt.Fprintf(out, "To use these files, run:\n")
	fmt.Fprintf(out, "  polyctx config set reference.dir %s\n", destDir)
	return nil
}

// downloadFile downloads a gzip-compressed file from URL and writes it
// decompressed to destPath.
func downloadFile(out io.Writer, url, destPath string) error {
	// Check if file already exists
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(url))

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	var downloaded int64
	pw := &progressWriter{
		out:        out,
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	zr, err := gzip.NewReader(io.TeeReader(resp.Body, pw))
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	defer zr.Close()

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, zr)
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s (%s uncompressed)\n", formatSize(downloaded), formatSize(written))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
