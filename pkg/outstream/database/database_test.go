package database_test

import (
	"strings"

	"github.com/outflux/outflux/pkg/outstream/database"
	"github.com/outflux/outflux/pkg/xmltree"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Database", func() {
	configure := func(doc string) (*database.Database, error) {
		entity := database.New(logger)

		tree, err := xmltree.Parse(strings.NewReader(doc))
		ExpectWithOffset(1, err).NotTo(HaveOccurred())

		in, err := entity.InputSpec().Parse(tree.Root)
		if err != nil {
			return nil, err
		}

		return entity, entity.HandleInput(in)
	}

	It("applies connection defaults", func() {
		entity, err := configure(`<Database name="archive"><source>samples</source><table>runs</table></Database>`)
		Expect(err).NotTo(HaveOccurred())

		Expect(entity.InitParams()).To(Equal(map[string]string{
			"source":   "samples",
			"table":    "runs",
			"host":     "127.0.0.1",
			"port":     "5432",
			"database": "postgres",
			"user":     "postgres",
		}))
	})

	It("honors explicit connection settings", func() {
		entity, err := configure(`
		<Database name="archive">
			<source>samples</source>
			<table>runs</table>
			<host>db.internal</host>
			<port>6432</port>
			<database>results</database>
			<user>outflux</user>
		</Database>`)
		Expect(err).NotTo(HaveOccurred())

		params := entity.InitParams()
		Expect(params["host"]).To(Equal("db.internal"))
		Expect(params["port"]).To(Equal("6432"))
		Expect(params["database"]).To(Equal("results"))
		Expect(params["user"]).To(Equal("outflux"))
	})

	It("rejects configuration without a table", func() {
		_, err := configure(`<Database name="archive"><source>samples</source></Database>`)
		Expect(err).To(MatchError(ContainSubstring("table")))
	})

	It("closes cleanly when never initialized", func() {
		entity, err := configure(`<Database name="archive"><source>samples</source><table>runs</table></Database>`)
		Expect(err).NotTo(HaveOccurred())
		Expect(entity.Close()).To(Succeed())
	})
})
