package cli

func regCommands() {
	//Schedule
	scheduleCmd.AddCommand(schedule_encodeCmd)
	scheduleCmd.AddCommand(schedule_decodeCmd)
	scheduleCmd.AddCommand(schedule_validateCmd)

	//Authority
	authorityCmd.AddCommand(authority_validateCmd)
	authorityCmd.AddCommand(authority_checkCmd)

	//Store
	storeCmd.AddCommand(store_putCmd)
	storeCmd.AddCommand(store_activateCmd)
	storeCmd.AddCommand(store_activeCmd)
	storeCmd.AddCommand(store_mastersCmd)
	storeCmd.AddCommand(store_genesisCmd)

	//Key
	keyCmd.AddCommand(key_inspectCmd)

	//Root
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(authorityCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(keyCmd)
}
