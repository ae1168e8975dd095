package delivery

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/guirluz/rental-backend/internal/app"
	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/guirluz/rental-backend/internal/utils/responses"
	"github.com/guirluz/rental-backend/internal/ws"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

type ImportDelivery struct {
	importUsecase app.ImportUsecase
	registry      *ws.Registry
	upgrader      websocket.Upgrader
}

func CreateImportDelivery(importUsecase app.ImportUsecase, registry *ws.Registry) *ImportDelivery {
	return &ImportDelivery{
		importUsecase: importUsecase,
		registry:      registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (d *ImportDelivery) UploadExcel(w http.ResponseWriter, r *http.Request) {
	const funcName = "ImportDelivery.UploadExcel"
	logger.Debug("handling spreadsheet upload", zap.String("function", funcName))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	sheets := r.Form["sheets"]

	taskID, err := d.importUsecase.SaveAndEnqueue(r.Context(), header.Filename, file, sheets)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusAccepted, "file received, processing in background", models.UploadResponse{
		TaskID: taskID,
	})
}

func (d *ImportDelivery) PreviewExcel(w http.ResponseWriter, r *http.Request) {
	const funcName = "ImportDelivery.PreviewExcel"
	logger.Debug("handling spreadsheet preview upload", zap.String("function", funcName))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		responses.DoBadResponseAndLog(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	taskID, err := d.importUsecase.EnqueuePreview(r.Context(), header.Filename, file)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	responses.DoJSONResponse(w, http.StatusAccepted, "file received, building preview", models.UploadResponse{
		TaskID: taskID,
	})
}

func (d *ImportDelivery) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	const funcName = "ImportDelivery.GetTaskStatus"
	logger.Debug("getting task status", zap.String("function", funcName))

	vars := mux.Vars(r)
	taskID := vars["task_id"]

	status, err := d.importUsecase.GetTaskStatus(r.Context(), taskID)
	if err != nil {
		responses.ResponseErrorAndLog(w, err, funcName)
		return
	}

	switch status.State {
	case models.StateSuccess:
		responses.DoJSONResponse(w, http.StatusOK, "task completed", status)
	case models.StateFailure:
		responses.DoJSONResponse(w, http.StatusInternalServerError, "task failed", status)
	default:
		responses.DoJSONResponse(w, http.StatusAccepted, "task in progress", status)
	}
}

// ServeWS upgrades the connection and keeps it registered for broadcasts
// until the client goes away. Inbound messages are discarded; reading them
// only detects the close.
func (d *ImportDelivery) ServeWS(w http.ResponseWriter, r *http.Request) {
	const funcName = "ImportDelivery.ServeWS"

	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return
	}

	d.registry.Register(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			d.registry.Unregister(conn)
			_ = conn.Close()
			return
		}
	}
}
