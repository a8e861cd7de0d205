package dataset

import "github.com/kailas-cloud/buscadoc/internal/domain/record"

// Sample returns the records served when the dataset file is missing or unreadable.
func Sample() []record.Record {
	return []record.Record{
		record.New(
			record.Field{Name: "nombre", Value: "Contrato de Servicio B"},
			record.Field{Name: "tipo", Value: "ruc"},
			record.Field{Name: "id", Value: "DOC002"},
			record.Field{Name: "contenido", Value: "024 contrato servicio prestación"},
			record.Field{Name: "fecha", Value: "2024-01-15"},
			record.Field{Name: "estado", Value: "activo"},
		),
		record.New(
			record.Field{Name: "nombre", Value: "Factura #12345"},
			record.Field{Name: "tipo", Value: "obligado"},
			record.Field{Name: "id", Value: "DOC004"},
			record.Field{Name: "contenido", Value: "024 factura número doce mil"},
			record.Field{Name: "fecha", Value: "2024-02-10"},
			record.Field{Name: "estado", Value: "procesado"},
		),
	}
}
