// Package discovery finds running consoles on the local network.
//
// A console started with its host bridge enabled advertises the bridge over
// multicast DNS as "_powerpack._tcp". Host shells (and the scan command)
// browse for that service to learn the WebSocket URL to connect to.
//
// # Usage Example
//
//	consoles, err := discovery.QuickScan(ctx)
//	if err != nil {
//		return err
//	}
//	for _, c := range consoles {
//		fmt.Println(c.Instance, c.ShellURL())
//	}
package discovery
