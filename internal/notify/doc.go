// Package notify turns normalized log events into the three-value payload of
// a webhook trigger and delivers it.
//
// Severities are matched by name, case-insensitively, and each maps to one
// emoji marker; unknown severities get their own marker rather than being
// dropped. Timestamps are rendered in a single configured zone.
//
// Delivery goes through the Notifier interface. IFTTTNotifier posts the
// payload as JSON to a Maker Webhooks trigger; TelegramNotifier mirrors it as
// a chat message. Non-2xx answers surface as *DeliveryError.
package notify
