// Package domain models the coastal flood-risk data handled by the service.
//
// # Data Sources
//
// Weather observations come from the Open-Meteo hourly forecast API for a
// single fixed coordinate. The response carries parallel arrays under the
// "hourly" object:
//
//	time                  local timestamps, "2006-01-02T15:04"
//	temperature_2m        °C
//	precipitation         mm over the preceding hour
//	relative_humidity_2m  %
//	windspeed_10m         km/h
//
// Index alignment is positional: the same index in every array describes the
// same instant. Arrays shorter than "time", null entries, and absent arrays
// all degrade to unknown measurements instead of failing the parse.
//
// Tide data is a static JSON document for one station:
//
//	mare_atual    {altura, status}          current height (m) and trend
//	proxima_mare  {tipo, altura, hora}      next extreme: type, height, time
//	horas         [{hora, altura}, ...]     chart samples in display order
//
// Heights may be encoded as JSON numbers or numeric strings.
//
// # Unknown values
//
// A [Measurement] is either known or unknown. Unknown values render as "--"
// and count as zero when scored, so a missing reading never raises or lowers
// the risk level on its own.
//
// # Risk Scoring
//
// [Score] accumulates points from an additive table (rain, tide, and a
// rain+tide combination bonus) and maps the total to low (<2), moderate (2–4)
// or high (≥5). See risk.go for thresholds.
package domain
