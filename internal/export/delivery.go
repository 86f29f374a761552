package export

import "github.com/labstack/echo/v4"

type Handler interface {
	SubmitExport() echo.HandlerFunc
	GetJob() echo.HandlerFunc
	CancelJob() echo.HandlerFunc
	GetActiveJob() echo.HandlerFunc
	GetVideo() echo.HandlerFunc
	GetHistory() echo.HandlerFunc
	GetDependencies() echo.HandlerFunc
}
