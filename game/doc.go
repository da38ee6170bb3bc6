// Package game ties a transport to the exploration and combat logic of the
// local player.
//
// Everything happens on the frame loop: Tick polls the connection changes,
// drains and decodes the received packets, dispatches them and advances the
// combat timers. No method of Game is safe for concurrent use.
package game
