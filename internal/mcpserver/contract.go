package mcpserver

// TableFormatContract explains the inventory tables returned by get_table.
const TableFormatContract = `# Inventory Table Format

Each table covers one ingredient kind: ` + "`fermentables`" + ` or ` + "`hops`" + `.

## Layout

- Columns are ingredients, grouped under a category header. Fermentables are
  grouped by **Supplier**, hops by **Origin**. Groups appear in the order their
  first ingredient was seen; ingredients without a category are grouped under
  ` + "`Unknown`" + `.
- Hop columns are labelled ` + "`<name>[ (Cryo)] <alpha>% <year> [(<notes>)]`" + `, so two
  lots of the same hop stay apart.
- The first row is **Current Inventory**.
- One row per planned batch, labelled ` + "`<batch number> - <recipe name>`" + `,
  ordered by batch number. Batches numbered 1000 and above are test batches and
  never appear.
- The last row is **Remaining Inventory**: current inventory minus everything
  the listed batches use.

## Numbers

- Fermentables are in kilograms, hops in grams.
- Values are rounded to three significant figures for display only; remaining
  inventory is computed from unrounded values. Magnitudes below 0.0001 show as 0.
- An ingredient that a batch uses but that is not in stock has inventory 0.
- Fermentables count the first matching recipe line per batch; hops sum every
  addition of the same item within a batch.

## Markers (text format)

- ` + "`!`" + ` after a remaining value: overdrawn, the batches need more than is in stock.
- ` + "`*`" + ` after a remaining value: depleted, exactly nothing left.
`
