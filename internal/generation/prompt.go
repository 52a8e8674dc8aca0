package generation

import "fmt"

const promptTemplate = "Generate sample data containing %d records for %s table as a JSON array. " +
	"Get inspiration from the data from %s and generate the result in the same format. " +
	"The output JSON should exclude the @odata.etag property and any property name (like accountid) that contains the text 'id' . " +
	"Replace single quotes with double quotes in the result."

// BuildPrompt renders the generation prompt for req.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(promptTemplate, req.RowCount, req.CollectionName, req.SampleFormat)
}
