package session

import (
	"samp-server-go/source/protocol"
)

// writeDatagram writes raw bytes straight to the socket, bypassing the
// reliability layer entirely (used for Hello, Ack and the parting
// Disconnect, none of which carry a reliable id that needs tracking).
func (c *Client) writeDatagram(datagram []byte) error {
	if c.conn == nil {
		return nil
	}
	_, err := c.conn.Write(datagram)
	return err
}

// sendHello writes the initial Hello handshake packet.
func (c *Client) sendHello(gameVersion uint32) error {
	id, err := c.idGen.Next()
	if err != nil {
		return err
	}
	return c.writeDatagram(protocol.EncodeHello(id, gameVersion, c.cfg.Name))
}

// sendPing fires a Ping, restarted on its own schedule by the Pinger; it
// does not restart the pinger itself (connection.py only restarts the
// keep-alive timer on outbound non-Ping/Ack reliable sends).
func (c *Client) sendPing() {
	id, err := c.idGen.Next()
	if err != nil {
		return
	}
	c.inFlight.Insert(id, func(latencyMs int) {
		c.enqueue(func() { c.latencyMs = latencyMs })
	})
	_ = c.writeDatagram(protocol.EncodePing(id))
}

// sendAck acknowledges a received reliable id.
func (c *Client) sendAck(reliableID uint16) error {
	return c.writeDatagram(protocol.EncodeAck(reliableID))
}

// sendReliable wraps children in a Reliable outer frame, tracks the new
// reliable id in the in-flight table and restarts the keep-alive pinger,
// matching connection.py's `send` for any non-Ping/Ack reliable packet.
func (c *Client) sendReliable(children []byte) error {
	var usedID uint16
	datagram := protocol.EncodeReliable(func() uint16 {
		id, err := c.idGen.Next()
		usedID = id
		if err != nil {
			return 0
		}
		return id
	}, children)

	c.inFlight.Insert(usedID, nil)
	if c.pinger != nil {
		c.pinger.Restart()
	}
	return c.writeDatagram(datagram)
}

// sendUnreliable wraps children in an Unreliable outer frame.
func (c *Client) sendUnreliable(children []byte) error {
	return c.writeDatagram(protocol.EncodeUnreliable(children))
}

// sendGameData broadcasts already-encoded game-data-layer children
// (typically one or more EncodeRpc results) to the whole lobby.
func (c *Client) sendGameData(children []byte) error {
	return c.sendReliable(protocol.EncodeGameData(c.gameID, children))
}

// sendGameDataTo sends game-data-layer children to a single client id, used
// for host-only RPCs like CheckName/CheckColor.
func (c *Client) sendGameDataTo(target uint32, children []byte) error {
	return c.sendReliable(protocol.EncodeGameDataTo(c.gameID, target, children))
}
