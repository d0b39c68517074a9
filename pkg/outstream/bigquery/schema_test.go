package bigquery

import (
	"strings"
	"time"

	bq "cloud.google.com/go/bigquery"

	"github.com/outflux/outflux/pkg/record"
	"github.com/outflux/outflux/pkg/xmltree"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("buildSchema", func() {
	It("prefixes variable columns with bookkeeping fields", func() {
		schema, variables := buildSchema([]string{"time", "x"})

		Expect(variables).To(Equal([]string{"time", "x"}))
		names := []string{}
		for _, field := range schema {
			names = append(names, field.Name)
		}
		Expect(names).To(Equal([]string{"produced_at", "source", "seq", "time", "x"}))
	})

	It("sorts variables into a stable column order", func() {
		_, variables := buildSchema([]string{"y", "time", "x"})
		Expect(variables).To(Equal([]string{"time", "x", "y"}))
	})

	It("types variables as nullable floats", func() {
		schema, _ := buildSchema([]string{"time"})
		Expect(schema[3].Type).To(Equal(bq.FloatFieldType))
		Expect(schema[3].Required).To(BeFalse())
	})

	It("sanitizes illegal column names", func() {
		schema, _ := buildSchema([]string{"heat-flux", "2phase"})
		Expect(schema[3].Name).To(Equal("_2phase"))
		Expect(schema[4].Name).To(Equal("heat_flux"))
	})
})

var _ = Describe("buildRow", func() {
	produced := time.Date(2021, 1, 15, 9, 30, 0, 0, time.UTC)

	entry := &record.Record{
		Timestamp: produced,
		Source:    "samples",
		Seq:       3,
		Values:    map[string]interface{}{"time": 0.5, "label": "hot"},
	}

	It("pairs values against the column order", func() {
		row := buildRow(entry, []string{"label", "time"})
		Expect(row).To(Equal([]bq.Value{produced, "samples", 3, nil, 0.5}))
	})
})

var _ = Describe("BigQuery", func() {
	configure := func(doc string) (*BigQuery, error) {
		entity := New(logger)

		tree, err := xmltree.Parse(strings.NewReader(doc))
		ExpectWithOffset(1, err).NotTo(HaveOccurred())

		in, err := entity.InputSpec().Parse(tree.Root)
		if err != nil {
			return nil, err
		}

		return entity, entity.HandleInput(in)
	}

	It("applies the default dataset location", func() {
		entity, err := configure(`
		<BigQuery name="archive">
			<source>samples</source>
			<project>outflux-results</project>
			<dataset>simulations</dataset>
			<table>runs</table>
		</BigQuery>`)
		Expect(err).NotTo(HaveOccurred())

		Expect(entity.InitParams()).To(Equal(map[string]string{
			"source":   "samples",
			"project":  "outflux-results",
			"dataset":  "simulations",
			"table":    "runs",
			"location": "EU",
		}))
	})

	It("rejects configuration without a project", func() {
		_, err := configure(`
		<BigQuery name="archive">
			<source>samples</source>
			<dataset>simulations</dataset>
			<table>runs</table>
		</BigQuery>`)
		Expect(err).To(MatchError(ContainSubstring("project")))
	})

	It("closes cleanly when never initialized", func() {
		entity, err := configure(`
		<BigQuery name="archive">
			<source>samples</source>
			<project>outflux-results</project>
			<dataset>simulations</dataset>
			<table>runs</table>
		</BigQuery>`)
		Expect(err).NotTo(HaveOccurred())
		Expect(entity.Close()).To(Succeed())
	})
})
