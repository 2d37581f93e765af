package handler

import "attendance-sync/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Iclock    *IclockHandler
	Ingest    *IngestHandler
	Query     *QueryHandler
	Reconcile *ReconcileHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Iclock:    NewIclockHandler(svc.Ingest),
		Ingest:    NewIngestHandler(svc.Ingest),
		Query:     NewQueryHandler(svc.Query),
		Reconcile: NewReconcileHandler(svc.Reconcile),
		Export:    NewExportHandler(svc.Export),
	}
}
