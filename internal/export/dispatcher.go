package export

import "github.com/amankumarsingh77/slidecast/internal/models"

// Dispatcher starts a registered job in the background.
type Dispatcher interface {
	Dispatch(job models.ExportJob) error
}
