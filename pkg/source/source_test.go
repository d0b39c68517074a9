package source_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/outflux/outflux/pkg/record"
	"github.com/outflux/outflux/pkg/source"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// drain collects a stream into a header and records, failing the test if the
// producer doesn't close the channel.
func drain(entries record.Stream) (*record.Header, []*record.Record) {
	var header *record.Header
	records := []*record.Record{}

	for entry := range entries {
		switch e := entry.Unwrap().(type) {
		case *record.Header:
			header = e
		case *record.Record:
			records = append(records, e)
		}
	}

	return header, records
}

var _ = Describe("Registry", func() {
	It("resolves sources by name", func() {
		registry, err := source.NewRegistry(source.NewMemory("samples", []string{"x"}))
		Expect(err).NotTo(HaveOccurred())

		set, err := registry.Get("samples")
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Name()).To(Equal("samples"))
	})

	It("errors on unknown names", func() {
		registry, err := source.NewRegistry(source.NewMemory("samples", []string{"x"}))
		Expect(err).NotTo(HaveOccurred())

		_, err = registry.Get("absent")
		Expect(err).To(MatchError(ContainSubstring("no such source: absent")))
	})

	It("rejects duplicate names", func() {
		_, err := source.NewRegistry(
			source.NewMemory("samples", []string{"x"}),
			source.NewMemory("samples", []string{"y"}),
		)
		Expect(err).To(MatchError(ContainSubstring("duplicate source name")))
	})
})

var _ = Describe("Memory", func() {
	It("streams a header entry before records", func() {
		set := source.NewMemory("samples", []string{"x", "y"}).
			Add(map[string]interface{}{"x": 1.0, "y": 2.0}).
			Add(map[string]interface{}{"x": 3.0, "y": 4.0})

		entries, err := set.Stream(context.Background())
		Expect(err).NotTo(HaveOccurred())

		header, records := drain(entries)
		Expect(header.Variables).To(Equal([]string{"x", "y"}))
		Expect(records).To(HaveLen(2))
		Expect(records[0].Seq).To(Equal(0))
		Expect(records[1].Values).To(HaveKeyWithValue("x", 3.0))
	})

	It("stops producing when the context is cancelled", func() {
		set := source.NewMemory("samples", []string{"x"})
		for idx := 0; idx < 100; idx++ {
			set.Add(map[string]interface{}{"x": float64(idx)})
		}

		ctx, cancel := context.WithCancel(context.Background())
		entries, err := set.Stream(ctx)
		Expect(err).NotTo(HaveOccurred())

		<-entries // header
		cancel()

		Eventually(func() bool {
			_, open := <-entries
			return open
		}, time.Second).Should(BeFalse())
	})
})

var _ = Describe("CSV", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "source")
		Expect(err).NotTo(HaveOccurred())

		path = filepath.Join(dir, "samples.csv")
		Expect(ioutil.WriteFile(path, []byte("time,x,label\n0.0,1.5,cold\n0.5,2.5,warm\n"), 0644)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("derives the header from the first row", func() {
		set, err := source.NewCSV(logger, source.CSVOptions{Name: "samples", Filename: path})
		Expect(err).NotTo(HaveOccurred())

		Expect(set.Header().Variables).To(Equal([]string{"time", "x", "label"}))
	})

	It("parses numeric cells as floats and keeps text as strings", func() {
		set, err := source.NewCSV(logger, source.CSVOptions{Name: "samples", Filename: path})
		Expect(err).NotTo(HaveOccurred())

		entries, err := set.Stream(context.Background())
		Expect(err).NotTo(HaveOccurred())

		_, records := drain(entries)
		Expect(records).To(HaveLen(2))
		Expect(records[0].Values).To(HaveKeyWithValue("x", 1.5))
		Expect(records[0].Values).To(HaveKeyWithValue("label", "cold"))
	})

	It("re-reads the file on each stream", func() {
		set, err := source.NewCSV(logger, source.CSVOptions{Name: "samples", Filename: path})
		Expect(err).NotTo(HaveOccurred())

		Expect(ioutil.WriteFile(path, []byte("time,x,label\n0.0,9.0,hot\n"), 0644)).To(Succeed())

		entries, err := set.Stream(context.Background())
		Expect(err).NotTo(HaveOccurred())

		_, records := drain(entries)
		Expect(records).To(HaveLen(1))
		Expect(records[0].Values).To(HaveKeyWithValue("x", 9.0))
	})

	It("errors on a missing file", func() {
		_, err := source.NewCSV(logger, source.CSVOptions{Name: "samples", Filename: filepath.Join(dir, "absent.csv")})
		Expect(err).To(HaveOccurred())
	})

	It("errors on an empty file", func() {
		Expect(ioutil.WriteFile(path, []byte(""), 0644)).To(Succeed())

		_, err := source.NewCSV(logger, source.CSVOptions{Name: "samples", Filename: path})
		Expect(err).To(MatchError(ContainSubstring("no header row")))
	})
})
